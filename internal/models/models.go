// Package models defines the domain entities for the costing console.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Currency is an ISO code a rate table can be priced in.
type Currency string

// Supported currencies.
const (
	CurrencySGD Currency = "SGD"
	CurrencyMYR Currency = "MYR"
)

// DefaultCurrency is the currency used when a request does not name one.
const DefaultCurrency = CurrencySGD

// SupportedCurrencies maps each supported currency code to its display symbol.
var SupportedCurrencies = map[Currency]string{
	CurrencySGD: "S$",
	CurrencyMYR: "RM",
}

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	_, ok := SupportedCurrencies[c]
	return ok
}

// Symbol returns the display symbol, or the code itself when unknown.
func (c Currency) Symbol() string {
	if s, ok := SupportedCurrencies[c]; ok {
		return s
	}
	return string(c)
}

// ParseCurrency normalizes a currency code. An empty string yields DefaultCurrency.
func ParseCurrency(s string) (Currency, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return DefaultCurrency, nil
	}
	c := Currency(s)
	if !c.Valid() {
		return "", fmt.Errorf("unsupported currency %q", s)
	}
	return c, nil
}

// Record statuses shared by staff, clients and POCs.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Permission is a single capability granted by a role, e.g. "quotations:write".
type Permission string

// Permissions known to the console.
const (
	PermStaffRead       Permission = "staff:read"
	PermStaffWrite      Permission = "staff:write"
	PermRolesWrite      Permission = "roles:write"
	PermClientsRead     Permission = "clients:read"
	PermClientsWrite    Permission = "clients:write"
	PermRatesRead       Permission = "rates:read"
	PermRatesWrite      Permission = "rates:write"
	PermQuotationsRead  Permission = "quotations:read"
	PermQuotationsWrite Permission = "quotations:write"
)

// AllPermissions lists every known permission.
var AllPermissions = []Permission{
	PermStaffRead, PermStaffWrite, PermRolesWrite,
	PermClientsRead, PermClientsWrite,
	PermRatesRead, PermRatesWrite,
	PermQuotationsRead, PermQuotationsWrite,
}

// Role is a named permission set assigned to staff.
type Role struct {
	ID          string
	Name        string
	Description string
	Permissions []Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a copy that shares no slices with r.
func (r Role) Clone() Role {
	r.Permissions = append([]Permission(nil), r.Permissions...)
	return r
}

// HasPermission reports whether the role grants p.
func (r Role) HasPermission(p Permission) bool {
	for _, granted := range r.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}

// Staff is a member of the internal team.
type Staff struct {
	ID         string
	Name       string
	Email      string
	Department string
	RoleID     string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Client is a customer company.
type Client struct {
	ID          string
	CompanyName string
	Industry    string
	Address     string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ClientPOC is a point of contact at a client company.
type ClientPOC struct {
	ID          string
	ClientID    string
	Name        string
	Email       string
	Phone       string
	Designation string
	IsPrimary   bool
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
