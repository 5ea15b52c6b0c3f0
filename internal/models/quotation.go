package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostComponent is one labelled contribution to a total.
type CostComponent struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Breakdown is the ordered list of contributions that make up a total.
type Breakdown []CostComponent

// Total sums the breakdown.
func (b Breakdown) Total() decimal.Decimal {
	total := decimal.Zero
	for _, c := range b {
		total = total.Add(c.Amount)
	}
	return total
}

// Quotation is a finalized price for a project. A revision is stored as a new
// Quotation with the same LineageID and the next Version.
type Quotation struct {
	ID            string          `json:"id"`
	LineageID     string          `json:"lineageId"`
	Version       int             `json:"version"`
	ClientID      string          `json:"clientId,omitempty"`
	ProjectType   ProjectType     `json:"projectType"`
	LineItems     LineItems       `json:"lineItems"`
	CostVersionID string          `json:"costVersionId"`
	Currency      Currency        `json:"currency"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	Breakdown     Breakdown       `json:"breakdown"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Clone returns a copy that shares no line items or breakdown with q.
func (q Quotation) Clone() Quotation {
	q.LineItems = CloneLineItems(q.LineItems)
	q.Breakdown = append(Breakdown(nil), q.Breakdown...)
	return q
}
