package properties

import (
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Status tracks where a listing is in its lifecycle.
type Status string

const (
	StatusAvailable     Status = "Available"
	StatusUnderContract Status = "UnderContract"
	StatusLeased        Status = "Leased"
	StatusSold          Status = "Sold"
)

// Valid reports whether s is a known listing status.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusUnderContract, StatusLeased, StatusSold:
		return true
	}
	return false
}

// LeaseOrSale describes how a property is offered.
type LeaseOrSale string

const (
	Lease LeaseOrSale = "Lease"
	Sale  LeaseOrSale = "Sale"
	Both  LeaseOrSale = "Both"
)

// Valid reports whether l is a known offering type.
func (l LeaseOrSale) Valid() bool {
	switch l {
	case Lease, Sale, Both:
		return true
	}
	return false
}

// Image is a stored photo of a property, ordered by SortOrder.
type Image struct {
	ID         string `json:"id"`
	PropertyID string `json:"propertyId,omitempty"`
	URL        string `json:"url"`
	Alt        string `json:"alt,omitempty"`
	SortOrder  int    `json:"sortOrder"`
}

// Property is an industrial real-estate listing.
type Property struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Slug          string      `json:"slug"`
	Address       string      `json:"address"`
	City          string      `json:"city"`
	State         string      `json:"state"`
	Zip           string      `json:"zip"`
	Description   string      `json:"description"`
	SquareFeet    int         `json:"squareFeet"`
	ClearHeight   string      `json:"clearHeight,omitempty"`
	DockDoors     int         `json:"dockDoors"`
	DriveInDoors  int         `json:"driveInDoors"`
	Acreage       float64     `json:"acreage,omitempty"`
	LeaseOrSale   LeaseOrSale `json:"leaseOrSale"`
	PriceOrRate   string      `json:"priceOrRate,omitempty"`
	AvailableDate *time.Time  `json:"availableDate,omitempty"`
	Highlights    []string    `json:"highlights"`
	Status        Status      `json:"status"`
	Featured      bool        `json:"featured"`
	Archived      bool        `json:"archived"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	Images        []Image     `json:"images,omitempty"`
}

// ImageInput links an uploaded image to a property. IDs carrying the "temp-"
// prefix come from uploads that happened before the property existed and
// create fresh rows.
type ImageInput struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Alt       string `json:"alt"`
	SortOrder int    `json:"sortOrder"`
}

// PropertyInput is the admin create/update payload.
type PropertyInput struct {
	Title         string       `json:"title"`
	Address       string       `json:"address"`
	City          string       `json:"city"`
	State         string       `json:"state"`
	Zip           string       `json:"zip"`
	Description   string       `json:"description"`
	SquareFeet    int          `json:"squareFeet"`
	ClearHeight   string       `json:"clearHeight"`
	DockDoors     int          `json:"dockDoors"`
	DriveInDoors  int          `json:"driveInDoors"`
	Acreage       float64      `json:"acreage"`
	LeaseOrSale   LeaseOrSale  `json:"leaseOrSale"`
	PriceOrRate   string       `json:"priceOrRate"`
	AvailableDate string       `json:"availableDate"`
	Highlights    []string     `json:"highlights"`
	Status        Status       `json:"status"`
	Featured      bool         `json:"featured"`
	Images        []ImageInput `json:"images"`
}

// ValidationErrors maps a field name to the first failure for that field.
type ValidationErrors map[string]string

// Validate normalizes defaults and returns field-level errors. A nil map
// means the input is acceptable.
func (in *PropertyInput) Validate() ValidationErrors {
	errs := ValidationErrors{}

	checkLen(errs, "title", in.Title, 5, 200, "Title must be at least 5 characters")
	checkLen(errs, "address", in.Address, 5, 200, "Address is required")
	checkLen(errs, "city", in.City, 2, 100, "City is required")
	checkLen(errs, "state", in.State, 2, 50, "State is required")
	checkLen(errs, "zip", in.Zip, 5, 10, "ZIP code is required")
	if utf8.RuneCountInString(in.Description) < 20 {
		errs["description"] = "Description must be at least 20 characters"
	}
	if in.SquareFeet <= 0 {
		errs["squareFeet"] = "Square feet must be positive"
	}
	if in.DockDoors < 0 {
		errs["dockDoors"] = "Dock doors cannot be negative"
	}
	if in.DriveInDoors < 0 {
		errs["driveInDoors"] = "Drive-in doors cannot be negative"
	}
	if in.Acreage < 0 {
		errs["acreage"] = "Acreage must be positive"
	}
	if in.LeaseOrSale == "" {
		in.LeaseOrSale = Lease
	} else if !in.LeaseOrSale.Valid() {
		errs["leaseOrSale"] = "Invalid lease or sale type"
	}
	if in.Status == "" {
		in.Status = StatusAvailable
	} else if !in.Status.Valid() {
		errs["status"] = "Invalid status"
	}
	if in.AvailableDate != "" {
		if _, err := in.ParsedAvailableDate(); err != nil {
			errs["availableDate"] = "Invalid date"
		}
	}
	for _, img := range in.Images {
		if _, err := url.ParseRequestURI(img.URL); img.URL == "" || err != nil {
			errs["images"] = "One or more images failed to upload"
			break
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ParsedAvailableDate returns the availability date, nil when unset.
func (in *PropertyInput) ParsedAvailableDate() (*time.Time, error) {
	if in.AvailableDate == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", in.AvailableDate)
	if err != nil {
		// Also accept full timestamps, which the admin form sends.
		t, err = time.Parse(time.RFC3339, in.AvailableDate)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func checkLen(errs ValidationErrors, field, value string, min, max int, tooShort string) {
	n := utf8.RuneCountInString(value)
	if n < min {
		errs[field] = tooShort
		return
	}
	if n > max {
		errs[field] = "Value is too long"
	}
}

// IsTempImageID reports whether an image id was minted client-side for an
// upload not yet linked to a property.
func IsTempImageID(id string) bool {
	return len(id) > 5 && id[:5] == "temp-"
}

// NewID mints a property/image identifier.
func NewID() string {
	return uuid.NewString()
}
