package properties

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// ListFilter narrows a listing query. Zero values mean "any".
type ListFilter struct {
	City            string
	Status          Status
	LeaseOrSale     LeaseOrSale
	MinSquareFeet   int
	MaxSquareFeet   int
	FeaturedOnly    bool
	Search          string
	IncludeArchived bool
}

// ParseSquareFeetRange maps the public site's range keys to bounds. Unknown
// keys mean no constraint.
func ParseSquareFeetRange(key string) (min, max int) {
	switch key {
	case "0-25000":
		return 0, 25000
	case "25000-50000":
		return 25000, 50000
	case "50000-100000":
		return 50000, 100000
	case "100000-200000":
		return 100000, 200000
	case "200000+":
		return 200000, 0
	}
	return 0, 0
}

// FlagPatch updates listing toggles without touching content fields.
type FlagPatch struct {
	Status   *Status
	Featured *bool
	Archived *bool
}

// Repository defines listing storage. Update applies the payload's image
// list as well: fresh or temp ids insert new rows, known ids take the
// submitted sort position, so the admin form's drag ordering round-trips
// through a plain update.
type Repository interface {
	Create(ctx context.Context, in *PropertyInput) (*Property, error)
	GetByID(ctx context.Context, id string) (*Property, error)
	GetBySlug(ctx context.Context, slug string) (*Property, error)
	List(ctx context.Context, f ListFilter) ([]*Property, error)
	Update(ctx context.Context, id string, in *PropertyInput) (*Property, error)
	SetFlags(ctx context.Context, id string, patch FlagPatch) (*Property, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	AddImage(ctx context.Context, propertyID, url, alt string) (*Image, error)
}

// InMemoryRepository backs development and tests.
type InMemoryRepository struct {
	mu         sync.RWMutex
	properties map[string]*Property
	now        func() time.Time
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		properties: make(map[string]*Property),
		now:        time.Now,
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, in *PropertyInput) (*Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var existing []string
	for _, p := range r.properties {
		existing = append(existing, p.Slug)
	}

	availableDate, err := in.ParsedAvailableDate()
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	p := &Property{
		ID:            NewID(),
		Title:         in.Title,
		Slug:          GenerateSlug(in.Title, existing),
		Address:       in.Address,
		City:          in.City,
		State:         in.State,
		Zip:           in.Zip,
		Description:   in.Description,
		SquareFeet:    in.SquareFeet,
		ClearHeight:   in.ClearHeight,
		DockDoors:     in.DockDoors,
		DriveInDoors:  in.DriveInDoors,
		Acreage:       in.Acreage,
		LeaseOrSale:   in.LeaseOrSale,
		PriceOrRate:   in.PriceOrRate,
		AvailableDate: availableDate,
		Highlights:    append([]string(nil), in.Highlights...),
		Status:        in.Status,
		Featured:      in.Featured,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, img := range in.Images {
		p.Images = append(p.Images, Image{
			ID:         NewID(),
			PropertyID: p.ID,
			URL:        img.URL,
			Alt:        img.Alt,
			SortOrder:  img.SortOrder,
		})
	}
	sortImages(p.Images)

	r.properties[p.ID] = p
	return clone(p), nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.properties[id]
	if !ok {
		return nil, ErrPropertyNotFound
	}
	return clone(p), nil
}

func (r *InMemoryRepository) GetBySlug(ctx context.Context, slug string) (*Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.properties {
		if p.Slug == slug {
			return clone(p), nil
		}
	}
	return nil, ErrPropertyNotFound
}

func (r *InMemoryRepository) List(ctx context.Context, f ListFilter) ([]*Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Property
	for _, p := range r.properties {
		if matches(p, f) {
			out = append(out, clone(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, id string, in *PropertyInput) (*Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.properties[id]
	if !ok {
		return nil, ErrPropertyNotFound
	}

	if in.Title != p.Title {
		var existing []string
		for _, other := range r.properties {
			if other.ID != id {
				existing = append(existing, other.Slug)
			}
		}
		p.Slug = GenerateSlug(in.Title, existing)
	}

	availableDate, err := in.ParsedAvailableDate()
	if err != nil {
		return nil, err
	}
	if availableDate != nil {
		p.AvailableDate = availableDate
	}

	p.Title = in.Title
	p.Address = in.Address
	p.City = in.City
	p.State = in.State
	p.Zip = in.Zip
	p.Description = in.Description
	p.SquareFeet = in.SquareFeet
	p.ClearHeight = in.ClearHeight
	p.DockDoors = in.DockDoors
	p.DriveInDoors = in.DriveInDoors
	p.Acreage = in.Acreage
	p.LeaseOrSale = in.LeaseOrSale
	p.PriceOrRate = in.PriceOrRate
	p.Highlights = append([]string(nil), in.Highlights...)
	p.Status = in.Status
	p.Featured = in.Featured
	p.UpdatedAt = r.now().UTC()

	for _, img := range in.Images {
		if img.ID == "" || IsTempImageID(img.ID) {
			p.Images = append(p.Images, Image{
				ID:         NewID(),
				PropertyID: p.ID,
				URL:        img.URL,
				Alt:        img.Alt,
				SortOrder:  img.SortOrder,
			})
			continue
		}
		found := false
		for i := range p.Images {
			if p.Images[i].ID == img.ID {
				p.Images[i].SortOrder = img.SortOrder
				found = true
				break
			}
		}
		if !found {
			return nil, ErrImageNotFound
		}
	}
	sortImages(p.Images)

	return clone(p), nil
}

func (r *InMemoryRepository) SetFlags(ctx context.Context, id string, patch FlagPatch) (*Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.properties[id]
	if !ok {
		return nil, ErrPropertyNotFound
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Featured != nil {
		p.Featured = *patch.Featured
	}
	if patch.Archived != nil {
		p.Archived = *patch.Archived
	}
	p.UpdatedAt = r.now().UTC()
	return clone(p), nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.properties[id]; !ok {
		return ErrPropertyNotFound
	}
	delete(r.properties, id)
	return nil
}

func (r *InMemoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.properties[id]
	return ok, nil
}

func (r *InMemoryRepository) AddImage(ctx context.Context, propertyID, url, alt string) (*Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.properties[propertyID]
	if !ok {
		return nil, ErrPropertyNotFound
	}
	next := 0
	for _, img := range p.Images {
		if img.SortOrder >= next {
			next = img.SortOrder + 1
		}
	}
	img := Image{
		ID:         NewID(),
		PropertyID: propertyID,
		URL:        url,
		Alt:        alt,
		SortOrder:  next,
	}
	p.Images = append(p.Images, img)
	return &img, nil
}

func matches(p *Property, f ListFilter) bool {
	if p.Archived && !f.IncludeArchived {
		return false
	}
	if f.City != "" && !strings.EqualFold(p.City, f.City) {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.LeaseOrSale != "" && p.LeaseOrSale != f.LeaseOrSale && p.LeaseOrSale != Both {
		return false
	}
	if f.MinSquareFeet > 0 && p.SquareFeet < f.MinSquareFeet {
		return false
	}
	if f.MaxSquareFeet > 0 && p.SquareFeet > f.MaxSquareFeet {
		return false
	}
	if f.FeaturedOnly && !p.Featured {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.City), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	return true
}

func sortImages(images []Image) {
	sort.Slice(images, func(i, j int) bool { return images[i].SortOrder < images[j].SortOrder })
}

func clone(p *Property) *Property {
	cp := *p
	cp.Highlights = append([]string(nil), p.Highlights...)
	cp.Images = append([]Image(nil), p.Images...)
	if p.AvailableDate != nil {
		d := *p.AvailableDate
		cp.AvailableDate = &d
	}
	return &cp
}

var _ Repository = (*InMemoryRepository)(nil)
