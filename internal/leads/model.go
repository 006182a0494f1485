package leads

import (
	"time"

	"github.com/google/uuid"
)

// Type says which public form produced the lead.
type Type string

const (
	TypeContact             Type = "Contact"
	TypeRequestInfo         Type = "RequestInfo"
	TypeScheduleWalkthrough Type = "ScheduleWalkthrough"
)

// Valid reports whether t is a known lead type.
func (t Type) Valid() bool {
	switch t {
	case TypeContact, TypeRequestInfo, TypeScheduleWalkthrough:
		return true
	}
	return false
}

// NeedsProperty reports whether submissions of this type must reference a
// listing.
func (t Type) NeedsProperty() bool {
	return t == TypeRequestInfo || t == TypeScheduleWalkthrough
}

// Status tracks follow-up progress on a lead.
type Status string

const (
	StatusNew       Status = "New"
	StatusContacted Status = "Contacted"
	StatusClosed    Status = "Closed"
)

// Valid reports whether s is a known lead status.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusClosed:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed. Statuses
// only move forward: New to Contacted or Closed, Contacted to Closed.
// Setting the current status again is a no-op and allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusNew:
		return next == StatusContacted || next == StatusClosed
	case StatusContacted:
		return next == StatusClosed
	}
	return false
}

// Lead is a captured inquiry from the public site.
type Lead struct {
	ID                string    `json:"id"`
	Type              Type      `json:"type"`
	Status            Status    `json:"status"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone,omitempty"`
	Company           string    `json:"company,omitempty"`
	Message           string    `json:"message"`
	PropertyID        string    `json:"propertyId,omitempty"`
	PreferredDateTime string    `json:"preferredDateTime,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// NewID mints a lead identifier.
func NewID() string {
	return uuid.NewString()
}
