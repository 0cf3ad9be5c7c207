package leads

import (
	"strings"
	"time"
)

// LeadType classifies a lead into a routing tier.
type LeadType string

const (
	LeadTypeEnterprise LeadType = "enterprise"
	LeadTypeSMB        LeadType = "smb"
	LeadTypeIndividual LeadType = "individual"
)

// Valid reports whether the tier is one of the three closed enum values.
func (t LeadType) Valid() bool {
	switch t {
	case LeadTypeEnterprise, LeadTypeSMB, LeadTypeIndividual:
		return true
	}
	return false
}

// Priority marks how urgently a lead should be worked.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether the priority is a known value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// NameUnknown is the sentinel used when no name could be recovered from the
// conversation. It is a display value, not real contact data.
const NameUnknown = "Unknown"

// Lead is a qualified lead as stored and routed.
type Lead struct {
	ID        string    `json:"id"`
	LeadType  LeadType  `json:"lead_type"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Details   string    `json:"details"`
	Priority  Priority  `json:"priority"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateLeadRequest carries the field set for a new lead. Optional fields
// stay empty strings, never null.
type CreateLeadRequest struct {
	LeadType LeadType `json:"lead_type"`
	Name     string   `json:"name"`
	Company  string   `json:"company"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Details  string   `json:"details"`
	Priority Priority `json:"priority"`
	Source   string   `json:"source"`
}

// Normalize fills defaults and trims whitespace in place.
func (r *CreateLeadRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Company = strings.TrimSpace(r.Company)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	if r.Priority == "" {
		r.Priority = PriorityNormal
	}
}

// Validate enforces the tool-call contract: a tier from the closed enum and a
// non-empty name. HasContent must additionally hold for every path.
func (r *CreateLeadRequest) Validate() error {
	if r.LeadType == "" {
		return ErrMissingLeadType
	}
	if !r.LeadType.Valid() {
		return ErrInvalidLeadType
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	if !r.Priority.Valid() {
		return ErrInvalidPriority
	}
	if !r.HasContent() {
		return ErrEmptyLead
	}
	return nil
}

// HasContent guards against null-content records: a lead whose name is empty
// or the Unknown sentinel while company, email, and phone are all blank
// carries nothing a human could follow up on.
func (r *CreateLeadRequest) HasContent() bool {
	name := strings.TrimSpace(r.Name)
	if name != "" && !strings.EqualFold(name, NameUnknown) {
		return true
	}
	return strings.TrimSpace(r.Company) != "" ||
		strings.TrimSpace(r.Email) != "" ||
		strings.TrimSpace(r.Phone) != ""
}

// DedupKey derives the identity key used by the dedup guard: the normalized
// (name, email, phone) triple. Two extraction attempts for the same human
// yield the same key regardless of which trigger path produced them.
func DedupKey(name, email, phone string) string {
	norm := func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return norm(name) + "|" + norm(email) + "|" + norm(phone)
}

// Key returns the dedup key for this request.
func (r *CreateLeadRequest) Key() string {
	return DedupKey(r.Name, r.Email, r.Phone)
}
