package leads

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidationErrors maps a field name to the first failure for that field.
type ValidationErrors map[string]string

// SubmitLeadRequest is the public submission payload shared by all three
// forms. The honeypot field is rendered as a hidden input; humans leave it
// empty.
type SubmitLeadRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Company           string `json:"company"`
	Message           string `json:"message"`
	PropertyID        string `json:"propertyId"`
	PreferredDateTime string `json:"preferredDateTime"`
	Honeypot          string `json:"honeypot"`
}

// IsSpam reports whether the hidden honeypot field was filled in.
func (req *SubmitLeadRequest) IsSpam() bool {
	return strings.TrimSpace(req.Honeypot) != ""
}

// Validate checks the payload against the rules for the given lead type and
// returns field-level errors. A nil map means the submission is acceptable.
func (req *SubmitLeadRequest) Validate(leadType Type) ValidationErrors {
	errs := ValidationErrors{}

	name := strings.TrimSpace(req.Name)
	switch n := utf8.RuneCountInString(name); {
	case n < 2:
		errs["name"] = "Name must be at least 2 characters"
	case n > 100:
		errs["name"] = "Name is too long"
	}

	email := strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(email); err != nil || len(email) > 254 {
		errs["email"] = "Invalid email address"
	}

	switch n := utf8.RuneCountInString(req.Message); {
	case n < 10:
		errs["message"] = "Message must be at least 10 characters"
	case n > 2000:
		errs["message"] = "Message is too long"
	}

	if utf8.RuneCountInString(req.Company) > 100 {
		errs["company"] = "Company name is too long"
	}

	if leadType.NeedsProperty() {
		if req.PropertyID == "" {
			errs["propertyId"] = "Please select a property"
		} else if _, err := uuid.Parse(req.PropertyID); err != nil {
			errs["propertyId"] = "Invalid property"
		}
	}

	if leadType == TypeScheduleWalkthrough && strings.TrimSpace(req.PreferredDateTime) == "" {
		errs["preferredDateTime"] = "Please choose a preferred date and time"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ToLead builds the lead record a valid submission creates.
func (req *SubmitLeadRequest) ToLead(leadType Type) *Lead {
	lead := &Lead{
		ID:      NewID(),
		Type:    leadType,
		Status:  StatusNew,
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Company: strings.TrimSpace(req.Company),
		Message: req.Message,
	}
	if leadType.NeedsProperty() {
		lead.PropertyID = req.PropertyID
	}
	if leadType == TypeScheduleWalkthrough {
		lead.PreferredDateTime = strings.TrimSpace(req.PreferredDateTime)
	}
	return lead
}
