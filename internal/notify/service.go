package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/calder-ai/lead-qualification-platform/internal/leads"
	"github.com/calder-ai/lead-qualification-platform/pkg/logging"
)

// ErrUnknownTier is returned when a lead's type has no routing entry.
var ErrUnknownTier = errors.New("notify: no route for lead type")

// Service routes qualified leads to the specialist track for their tier and
// sends ad-hoc notification emails. Routing is a static table lookup; there
// is no fallback recipient, an unmapped tier is a caller error.
type Service struct {
	email   EmailSender
	routes  map[string]string
	orgName string
	logger  *logging.Logger
}

// NewService creates a notification service. routes maps lead type to the
// specialist inbox for that tier.
func NewService(email EmailSender, routes map[string]string, orgName string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if orgName == "" {
		orgName = "Lead Desk"
	}
	return &Service{
		email:   email,
		routes:  routes,
		orgName: orgName,
		logger:  logger,
	}
}

// Enabled reports whether an email sender is configured.
func (s *Service) Enabled() bool {
	return s.email != nil
}

// RecipientFor returns the specialist inbox for a tier.
func (s *Service) RecipientFor(leadType leads.LeadType) (string, error) {
	to, ok := s.routes[string(leadType)]
	if !ok || to == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownTier, leadType)
	}
	return to, nil
}

// RouteLead emails the stored lead to its tier's specialist track. The caller
// has already deduplicated; a delivery failure here is surfaced, not retried.
func (s *Service) RouteLead(ctx context.Context, lead *leads.Lead) error {
	to, err := s.RecipientFor(lead.LeadType)
	if err != nil {
		return err
	}
	if s.email == nil {
		s.logger.Warn("notify: email not configured, lead not routed", "lead_id", lead.ID, "lead_type", lead.LeadType)
		return fmt.Errorf("notify: email sender not configured")
	}

	subject := fmt.Sprintf("New %s lead: %s", lead.LeadType, lead.Name)
	if lead.Priority == leads.PriorityHigh || lead.Priority == leads.PriorityUrgent {
		subject = fmt.Sprintf("[%s] %s", strings.ToUpper(string(lead.Priority)), subject)
	}

	msg := EmailMessage{
		To:      to,
		Subject: subject,
		Body:    s.leadBody(lead),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("notify: failed to route lead", "error", err, "lead_id", lead.ID, "to", to)
		return fmt.Errorf("notify: route lead: %w", err)
	}

	s.logger.Info("lead routed", "lead_id", lead.ID, "lead_type", lead.LeadType, "to", to)
	return nil
}

// SendDirect sends a one-off email to an explicit recipient.
func (s *Service) SendDirect(ctx context.Context, to, subject, body string) error {
	if s.email == nil {
		return fmt.Errorf("notify: email sender not configured")
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("notify: recipient required")
	}
	msg := EmailMessage{To: to, Subject: subject, Body: body}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: send email: %w", err)
	}
	return nil
}

func (s *Service) leadBody(lead *leads.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A new %s lead is ready for follow-up.\n\n", lead.LeadType)
	fmt.Fprintf(&b, "Name: %s\n", lead.Name)
	if lead.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", lead.Company)
	}
	if lead.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", lead.Email)
	}
	if lead.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", lead.Phone)
	}
	fmt.Fprintf(&b, "Priority: %s\n", lead.Priority)
	fmt.Fprintf(&b, "Source: %s\n", lead.Source)
	if lead.Details != "" {
		fmt.Fprintf(&b, "\nDetails:\n%s\n", lead.Details)
	}
	fmt.Fprintf(&b, "\n-- %s", s.orgName)
	return b.String()
}
