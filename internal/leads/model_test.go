package leads

import (
	"errors"
	"testing"
)

func TestLeadTypeValid(t *testing.T) {
	for _, lt := range []LeadType{LeadTypeEnterprise, LeadTypeSMB, LeadTypeIndividual} {
		if !lt.Valid() {
			t.Errorf("%q should be valid", lt)
		}
	}
	for _, lt := range []LeadType{"", "vip", "Enterprise ", "ENTERPRISE"} {
		if lt.Valid() {
			t.Errorf("%q should be invalid", lt)
		}
	}
}

func TestCreateLeadRequestValidate(t *testing.T) {
	base := CreateLeadRequest{
		LeadType: LeadTypeSMB,
		Name:     "Sarah",
		Email:    "sarah@acme.com",
		Priority: PriorityNormal,
	}

	if err := base.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*CreateLeadRequest)
		want   error
	}{
		{"missing type", func(r *CreateLeadRequest) { r.LeadType = "" }, ErrMissingLeadType},
		{"unknown type", func(r *CreateLeadRequest) { r.LeadType = "vip" }, ErrInvalidLeadType},
		{"missing name", func(r *CreateLeadRequest) { r.Name = "  " }, ErrMissingName},
		{"bad priority", func(r *CreateLeadRequest) { r.Priority = "asap" }, ErrInvalidPriority},
		{"empty lead", func(r *CreateLeadRequest) {
			r.Name = NameUnknown
			r.Company, r.Email, r.Phone = "", "", ""
		}, ErrEmptyLead},
	}
	for _, tc := range cases {
		req := base
		tc.mutate(&req)
		if err := req.Validate(); !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestHasContent(t *testing.T) {
	cases := []struct {
		name string
		req  CreateLeadRequest
		want bool
	}{
		{"real name only", CreateLeadRequest{Name: "Sarah"}, true},
		{"unknown with email", CreateLeadRequest{Name: NameUnknown, Email: "a@b.com"}, true},
		{"unknown with phone", CreateLeadRequest{Name: NameUnknown, Phone: "555-123-4567"}, true},
		{"unknown with company", CreateLeadRequest{Name: NameUnknown, Company: "Acme"}, true},
		{"unknown alone", CreateLeadRequest{Name: NameUnknown}, false},
		{"case-folded unknown", CreateLeadRequest{Name: "unknown"}, false},
		{"all blank", CreateLeadRequest{}, false},
	}
	for _, tc := range cases {
		if got := tc.req.HasContent(); got != tc.want {
			t.Errorf("%s: HasContent = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNormalizeDefaultsPriority(t *testing.T) {
	req := CreateLeadRequest{LeadType: LeadTypeIndividual, Name: " Dana ", Priority: ""}
	req.Normalize()
	if req.Priority != PriorityNormal {
		t.Errorf("expected normal priority, got %q", req.Priority)
	}
	if req.Name != "Dana" {
		t.Errorf("expected trimmed name, got %q", req.Name)
	}
}

func TestRequestKeyMatchesDedupKey(t *testing.T) {
	req := CreateLeadRequest{Name: "Sarah", Email: "Sarah@Acme.com", Phone: "555-123-4567"}
	if req.Key() != DedupKey("sarah", "sarah@acme.com", "555-123-4567") {
		t.Error("request key should be the normalized triple")
	}
}
