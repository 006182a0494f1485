package leads

import (
	"strings"
	"testing"
)

func validSubmission() SubmitLeadRequest {
	return SubmitLeadRequest{
		Name:    "Dana Whitfield",
		Email:   "dana@acmefreight.com",
		Company: "Acme Freight",
		Message: "Looking for 50k SF with dock doors near the interstate.",
	}
}

func TestValidateContact(t *testing.T) {
	req := validSubmission()
	if errs := req.Validate(TypeContact); errs != nil {
		t.Fatalf("valid contact got errors: %v", errs)
	}
}

func TestValidateFieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitLeadRequest)
		field  string
		asType Type
	}{
		{"short name", func(r *SubmitLeadRequest) { r.Name = "D" }, "name", TypeContact},
		{"long name", func(r *SubmitLeadRequest) { r.Name = strings.Repeat("a", 101) }, "name", TypeContact},
		{"bad email", func(r *SubmitLeadRequest) { r.Email = "not-an-email" }, "email", TypeContact},
		{"long email", func(r *SubmitLeadRequest) { r.Email = strings.Repeat("a", 250) + "@x.com" }, "email", TypeContact},
		{"short message", func(r *SubmitLeadRequest) { r.Message = "too short" }, "message", TypeContact},
		{"long message", func(r *SubmitLeadRequest) { r.Message = strings.Repeat("m", 2001) }, "message", TypeContact},
		{"long company", func(r *SubmitLeadRequest) { r.Company = strings.Repeat("c", 101) }, "company", TypeContact},
		{"missing property", func(r *SubmitLeadRequest) { r.PropertyID = "" }, "propertyId", TypeRequestInfo},
		{"bad property id", func(r *SubmitLeadRequest) { r.PropertyID = "not-a-uuid" }, "propertyId", TypeRequestInfo},
		{"missing preferred time", func(r *SubmitLeadRequest) {
			r.PropertyID = "8b7f3a64-32a3-4a01-9c53-0f0de41bb001"
			r.PreferredDateTime = "  "
		}, "preferredDateTime", TypeScheduleWalkthrough},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSubmission()
			tt.mutate(&req)
			errs := req.Validate(tt.asType)
			if errs[tt.field] == "" {
				t.Errorf("expected error for %s, got %v", tt.field, errs)
			}
		})
	}
}

func TestMessageLengthBoundary(t *testing.T) {
	req := validSubmission()

	req.Message = strings.Repeat("x", 9)
	if errs := req.Validate(TypeContact); errs["message"] == "" {
		t.Error("9-char message accepted")
	}

	req.Message = strings.Repeat("x", 10)
	if errs := req.Validate(TypeContact); errs != nil {
		t.Errorf("10-char message rejected: %v", errs)
	}

	req.Message = strings.Repeat("x", 2000)
	if errs := req.Validate(TypeContact); errs != nil {
		t.Errorf("2000-char message rejected: %v", errs)
	}
}

func TestPhoneIsFreeForm(t *testing.T) {
	req := validSubmission()
	req.Phone = "+1 (937) 555-0142 ext. 88, ask for the dock office"
	if errs := req.Validate(TypeContact); errs != nil {
		t.Errorf("free-form phone rejected: %v", errs)
	}

	req.Phone = strings.Repeat("5", 64)
	if errs := req.Validate(TypeContact); errs != nil {
		t.Errorf("long phone rejected: %v", errs)
	}
}

func TestHoneypotDetection(t *testing.T) {
	req := validSubmission()
	if req.IsSpam() {
		t.Error("empty honeypot flagged as spam")
	}
	req.Honeypot = "http://spam.example"
	if !req.IsSpam() {
		t.Error("filled honeypot not flagged")
	}
}

func TestToLeadDropsFieldsOutsideType(t *testing.T) {
	req := validSubmission()
	req.PropertyID = "8b7f3a64-32a3-4a01-9c53-0f0de41bb001"
	req.PreferredDateTime = "2026-09-10 10:00"

	contact := req.ToLead(TypeContact)
	if contact.PropertyID != "" || contact.PreferredDateTime != "" {
		t.Errorf("contact lead kept property fields: %+v", contact)
	}

	info := req.ToLead(TypeRequestInfo)
	if info.PropertyID == "" || info.PreferredDateTime != "" {
		t.Errorf("request-info lead fields wrong: %+v", info)
	}

	walk := req.ToLead(TypeScheduleWalkthrough)
	if walk.PropertyID == "" || walk.PreferredDateTime == "" {
		t.Errorf("walkthrough lead fields wrong: %+v", walk)
	}
	if walk.Status != StatusNew {
		t.Errorf("new lead status = %s", walk.Status)
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusNew, StatusContacted, true},
		{StatusNew, StatusClosed, true},
		{StatusContacted, StatusClosed, true},
		{StatusNew, StatusNew, true},
		{StatusContacted, StatusContacted, true},
		{StatusClosed, StatusClosed, true},
		{StatusContacted, StatusNew, false},
		{StatusClosed, StatusNew, false},
		{StatusClosed, StatusContacted, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.ok {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.ok)
		}
	}
}
