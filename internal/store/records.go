package store

import (
	"cmp"
	"context"
	"fmt"
	"net/mail"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/logger"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/models"
)

// Filter narrows a record listing. Query is a case-insensitive substring
// matched against the record's searchable text. Empty fields match all.
type Filter struct {
	Query    string
	Status   string
	RoleID   string
	ClientID string
}

func (f Filter) matches(status string, fields ...string) bool {
	if f.Status != "" && !strings.EqualFold(f.Status, status) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func normalizeStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", models.StatusActive:
		return models.StatusActive, nil
	case models.StatusInactive:
		return models.StatusInactive, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidRecord, status)
	}
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

func checkRole(role *models.Role) error {
	role.Name = strings.TrimSpace(role.Name)
	if role.Name == "" {
		return fmt.Errorf("%w: role name is required", ErrInvalidRecord)
	}
	for _, p := range role.Permissions {
		if !slices.Contains(models.AllPermissions, p) {
			return fmt.Errorf("%w: unknown permission %q", ErrInvalidRecord, p)
		}
	}
	return nil
}

// CreateRole adds a role. Role names are unique, ignoring case.
func (m *Memory) CreateRole(_ context.Context, role *models.Role) error {
	if err := checkRole(role); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	if _, exists := m.roles[role.ID]; exists {
		return fmt.Errorf("%w: role %s", ErrDuplicate, role.ID)
	}
	for _, r := range m.roles {
		if strings.EqualFold(r.Name, role.Name) {
			return fmt.Errorf("%w: role named %q", ErrDuplicate, role.Name)
		}
	}
	now := m.now()
	role.CreatedAt, role.UpdatedAt = now, now
	m.roles[role.ID] = role.Clone()
	return nil
}

// Role returns a role by id.
func (m *Memory) Role(_ context.Context, id string) (models.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.roles[id]
	if !ok {
		return models.Role{}, fmt.Errorf("%w: role %s", ErrNotFound, id)
	}
	return r.Clone(), nil
}

// UpdateRole replaces a role's name, description and permissions.
func (m *Memory) UpdateRole(_ context.Context, role *models.Role) error {
	if err := checkRole(role); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.roles[role.ID]
	if !ok {
		return fmt.Errorf("%w: role %s", ErrNotFound, role.ID)
	}
	for id, r := range m.roles {
		if id != role.ID && strings.EqualFold(r.Name, role.Name) {
			return fmt.Errorf("%w: role named %q", ErrDuplicate, role.Name)
		}
	}
	role.CreatedAt = existing.CreatedAt
	role.UpdatedAt = m.now()
	m.roles[role.ID] = role.Clone()
	return nil
}

// DeleteRole removes a role that no staff member holds.
func (m *Memory) DeleteRole(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.roles[id]; !ok {
		return fmt.Errorf("%w: role %s", ErrNotFound, id)
	}
	for _, s := range m.staff {
		if s.RoleID == id {
			return fmt.Errorf("%w: role %s is assigned to staff", ErrInUse, id)
		}
	}
	delete(m.roles, id)
	return nil
}

// Roles lists roles by name. Roles carry no status, so only Query applies.
func (m *Memory) Roles(_ context.Context, f Filter) ([]models.Role, error) {
	m.mu.RLock()
	var out []models.Role
	byName := Filter{Query: f.Query}
	for _, r := range m.roles {
		if byName.matches("", r.Name, r.Description) {
			out = append(out, r.Clone())
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.Role) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *Memory) checkStaffLocked(s *models.Staff) error {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	if s.Name == "" {
		return fmt.Errorf("%w: staff name is required", ErrInvalidRecord)
	}
	if !validEmail(s.Email) {
		return fmt.Errorf("%w: staff email %q is not valid", ErrInvalidRecord, s.Email)
	}
	status, err := normalizeStatus(s.Status)
	if err != nil {
		return err
	}
	s.Status = status
	if s.RoleID != "" {
		if _, ok := m.roles[s.RoleID]; !ok {
			return fmt.Errorf("%w: role %s", ErrNotFound, s.RoleID)
		}
	}
	for id, other := range m.staff {
		if id != s.ID && strings.EqualFold(other.Email, s.Email) {
			return fmt.Errorf("%w: staff email %q", ErrDuplicate, s.Email)
		}
	}
	return nil
}

// CreateStaff adds a staff member. Emails are unique, ignoring case.
func (m *Memory) CreateStaff(_ context.Context, s *models.Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if _, exists := m.staff[s.ID]; exists {
		return fmt.Errorf("%w: staff %s", ErrDuplicate, s.ID)
	}
	if err := m.checkStaffLocked(s); err != nil {
		return err
	}
	now := m.now()
	s.CreatedAt, s.UpdatedAt = now, now
	m.staff[s.ID] = *s

	logger.Log.Debug().Str("staff", logger.HashID(s.ID)).Msg("Staff created")
	return nil
}

// Staff returns a staff member by id.
func (m *Memory) Staff(_ context.Context, id string) (models.Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.staff[id]
	if !ok {
		return models.Staff{}, fmt.Errorf("%w: staff %s", ErrNotFound, id)
	}
	return s, nil
}

// UpdateStaff replaces a staff record.
func (m *Memory) UpdateStaff(_ context.Context, s *models.Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.staff[s.ID]
	if !ok {
		return fmt.Errorf("%w: staff %s", ErrNotFound, s.ID)
	}
	if err := m.checkStaffLocked(s); err != nil {
		return err
	}
	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = m.now()
	m.staff[s.ID] = *s
	return nil
}

// DeleteStaff removes a staff member who has not authored a rate table.
// Authors stay for the audit trail; deactivate them instead.
func (m *Memory) DeleteStaff(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.staff[id]; !ok {
		return fmt.Errorf("%w: staff %s", ErrNotFound, id)
	}
	for _, t := range m.rateTables {
		if t.CreatedBy == id {
			return fmt.Errorf("%w: staff %s authored rate table %s", ErrInUse, id, t.VersionLabel)
		}
	}
	delete(m.staff, id)
	return nil
}

// StaffList lists staff by name.
func (m *Memory) StaffList(_ context.Context, f Filter) ([]models.Staff, error) {
	m.mu.RLock()
	var out []models.Staff
	for _, s := range m.staff {
		if f.RoleID != "" && s.RoleID != f.RoleID {
			continue
		}
		if f.matches(s.Status, s.Name, s.Email, s.Department) {
			out = append(out, s)
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.Staff) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m *Memory) checkClientLocked(c *models.Client) error {
	c.CompanyName = strings.TrimSpace(c.CompanyName)
	if c.CompanyName == "" {
		return fmt.Errorf("%w: company name is required", ErrInvalidRecord)
	}
	status, err := normalizeStatus(c.Status)
	if err != nil {
		return err
	}
	c.Status = status
	for id, other := range m.clients {
		if id != c.ID && strings.EqualFold(other.CompanyName, c.CompanyName) {
			return fmt.Errorf("%w: client %q", ErrDuplicate, c.CompanyName)
		}
	}
	return nil
}

// CreateClient adds a client company. Company names are unique, ignoring case.
func (m *Memory) CreateClient(_ context.Context, c *models.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, exists := m.clients[c.ID]; exists {
		return fmt.Errorf("%w: client %s", ErrDuplicate, c.ID)
	}
	if err := m.checkClientLocked(c); err != nil {
		return err
	}
	now := m.now()
	c.CreatedAt, c.UpdatedAt = now, now
	m.clients[c.ID] = *c

	logger.Log.Debug().
		Str("client", logger.HashID(c.ID)).
		Str("company", logger.SanitizeText(c.CompanyName)).
		Msg("Client created")
	return nil
}

// Client returns a client by id.
func (m *Memory) Client(_ context.Context, id string) (models.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.clients[id]
	if !ok {
		return models.Client{}, fmt.Errorf("%w: client %s", ErrNotFound, id)
	}
	return c, nil
}

// UpdateClient replaces a client record.
func (m *Memory) UpdateClient(_ context.Context, c *models.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.clients[c.ID]
	if !ok {
		return fmt.Errorf("%w: client %s", ErrNotFound, c.ID)
	}
	if err := m.checkClientLocked(c); err != nil {
		return err
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = m.now()
	m.clients[c.ID] = *c
	return nil
}

// DeleteClient removes a client together with its points of contact. Clients
// referenced by a stored quotation are kept.
func (m *Memory) DeleteClient(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clients[id]; !ok {
		return fmt.Errorf("%w: client %s", ErrNotFound, id)
	}
	for lineageID, versions := range m.quotations {
		for _, q := range versions {
			if q.ClientID == id {
				return fmt.Errorf("%w: client %s is quoted in lineage %s", ErrInUse, id, lineageID)
			}
		}
	}
	for pocID, p := range m.pocs {
		if p.ClientID == id {
			delete(m.pocs, pocID)
		}
	}
	delete(m.clients, id)
	return nil
}

// Clients lists clients by company name.
func (m *Memory) Clients(_ context.Context, f Filter) ([]models.Client, error) {
	m.mu.RLock()
	var out []models.Client
	for _, c := range m.clients {
		if f.matches(c.Status, c.CompanyName, c.Industry, c.Address) {
			out = append(out, c)
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.Client) int { return cmp.Compare(a.CompanyName, b.CompanyName) })
	return out, nil
}

func (m *Memory) checkPOCLocked(p *models.ClientPOC) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	if p.Name == "" {
		return fmt.Errorf("%w: contact name is required", ErrInvalidRecord)
	}
	if p.Email != "" && !validEmail(p.Email) {
		return fmt.Errorf("%w: contact email %q is not valid", ErrInvalidRecord, p.Email)
	}
	if _, ok := m.clients[p.ClientID]; !ok {
		return fmt.Errorf("%w: client %s", ErrNotFound, p.ClientID)
	}
	status, err := normalizeStatus(p.Status)
	if err != nil {
		return err
	}
	p.Status = status
	return nil
}

// demoteOtherPrimariesLocked keeps at most one primary contact per client.
func (m *Memory) demoteOtherPrimariesLocked(p models.ClientPOC) {
	if !p.IsPrimary {
		return
	}
	for id, other := range m.pocs {
		if id != p.ID && other.ClientID == p.ClientID && other.IsPrimary {
			other.IsPrimary = false
			other.UpdatedAt = m.now()
			m.pocs[id] = other
		}
	}
}

// CreatePOC adds a point of contact to an existing client.
func (m *Memory) CreatePOC(_ context.Context, p *models.ClientPOC) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, exists := m.pocs[p.ID]; exists {
		return fmt.Errorf("%w: contact %s", ErrDuplicate, p.ID)
	}
	if err := m.checkPOCLocked(p); err != nil {
		return err
	}
	now := m.now()
	p.CreatedAt, p.UpdatedAt = now, now
	m.demoteOtherPrimariesLocked(*p)
	m.pocs[p.ID] = *p

	logger.Log.Debug().
		Str("client", logger.HashID(p.ClientID)).
		Str("designation", logger.SanitizeDescription(p.Designation)).
		Bool("primary", p.IsPrimary).
		Msg("Contact created")
	return nil
}

// POC returns a point of contact by id.
func (m *Memory) POC(_ context.Context, id string) (models.ClientPOC, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.pocs[id]
	if !ok {
		return models.ClientPOC{}, fmt.Errorf("%w: contact %s", ErrNotFound, id)
	}
	return p, nil
}

// UpdatePOC replaces a point of contact.
func (m *Memory) UpdatePOC(_ context.Context, p *models.ClientPOC) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.pocs[p.ID]
	if !ok {
		return fmt.Errorf("%w: contact %s", ErrNotFound, p.ID)
	}
	if err := m.checkPOCLocked(p); err != nil {
		return err
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = m.now()
	m.demoteOtherPrimariesLocked(*p)
	m.pocs[p.ID] = *p
	return nil
}

// DeletePOC removes a point of contact.
func (m *Memory) DeletePOC(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pocs[id]; !ok {
		return fmt.Errorf("%w: contact %s", ErrNotFound, id)
	}
	delete(m.pocs, id)
	return nil
}

// POCs lists points of contact, primary contacts first, then by name.
func (m *Memory) POCs(_ context.Context, f Filter) ([]models.ClientPOC, error) {
	m.mu.RLock()
	var out []models.ClientPOC
	for _, p := range m.pocs {
		if f.ClientID != "" && p.ClientID != f.ClientID {
			continue
		}
		if f.matches(p.Status, p.Name, p.Email, p.Phone, p.Designation) {
			out = append(out, p)
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.ClientPOC) int {
		if a.IsPrimary != b.IsPrimary {
			if a.IsPrimary {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}
