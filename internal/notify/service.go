package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/irpartners/brokerage-api/internal/leads"
	"github.com/irpartners/brokerage-api/internal/properties"
	"github.com/irpartners/brokerage-api/pkg/logging"
)

// Service turns new leads into emails for the brokerage team. Delivery is
// best effort: a failure is logged and reported, never surfaced to the
// visitor who submitted the form.
type Service struct {
	email   EmailSender
	toEmail string
	logger  *logging.Logger
}

// NewService creates a notification service. email or toEmail being empty
// disables sending.
func NewService(email EmailSender, toEmail string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:   email,
		toEmail: toEmail,
		logger:  logger,
	}
}

// leadLabel is the human-readable name of a lead type used in subjects.
func leadLabel(t leads.Type) string {
	switch t {
	case leads.TypeRequestInfo:
		return "Information Request"
	case leads.TypeScheduleWalkthrough:
		return "Walkthrough Request"
	default:
		return "General Contact"
	}
}

// NotifyLead emails the team about a new lead. prop may be nil for general
// contact leads. It reports whether an email was actually sent; sending is
// skipped without error when no sender or recipient is configured.
func (s *Service) NotifyLead(ctx context.Context, lead *leads.Lead, prop *properties.Property) (bool, error) {
	if s.email == nil || s.toEmail == "" {
		s.logger.Debug("notify: email not configured, skipping", "lead_id", lead.ID)
		return false, nil
	}

	subject := fmt.Sprintf("New %s from %s", leadLabel(lead.Type), lead.Name)

	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", lead.Name)
	fmt.Fprintf(&b, "Email: %s\n", lead.Email)
	if lead.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", lead.Phone)
	}
	if lead.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", lead.Company)
	}
	if prop != nil {
		fmt.Fprintf(&b, "Property: %s (%s, %s)\n", prop.Title, prop.City, prop.State)
	}
	if lead.PreferredDateTime != "" {
		fmt.Fprintf(&b, "Preferred time: %s\n", lead.PreferredDateTime)
	}
	fmt.Fprintf(&b, "\n%s\n", lead.Message)

	msg := EmailMessage{
		To:      s.toEmail,
		Subject: subject,
		Body:    b.String(),
		HTML:    "<pre>" + html.EscapeString(b.String()) + "</pre>",
	}

	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("lead notification failed", "error", err, "lead_id", lead.ID)
		return false, err
	}
	return true, nil
}
