package leads

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// PropertyChecker answers whether a listing exists. Satisfied by the
// properties repository.
type PropertyChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// ListFilter narrows a lead query. Zero values mean "any"; a zero Limit
// means no cap.
type ListFilter struct {
	Type   Type
	Status Status
	Limit  int
	Offset int
}

// Repository defines lead storage. Create verifies the referenced property
// exists (ErrPropertyNotFound otherwise) and UpdateStatus enforces the
// forward-only status progression, so every caller gets the same rules.
type Repository interface {
	Create(ctx context.Context, lead *Lead) (*Lead, error)
	GetByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, f ListFilter) ([]*Lead, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Lead, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository backs development and tests.
type InMemoryRepository struct {
	mu         sync.RWMutex
	leads      map[string]*Lead
	properties PropertyChecker
	now        func() time.Time
}

// NewInMemoryRepository creates an empty in-memory repository. A nil
// properties checker skips the existence check on create.
func NewInMemoryRepository(properties PropertyChecker) *InMemoryRepository {
	return &InMemoryRepository{
		leads:      make(map[string]*Lead),
		properties: properties,
		now:        time.Now,
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	if lead.PropertyID != "" && r.properties != nil {
		ok, err := r.properties.Exists(ctx, lead.PropertyID)
		if err != nil {
			return nil, fmt.Errorf("leads: property lookup: %w", err)
		}
		if !ok {
			return nil, ErrPropertyNotFound
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *lead
	if stored.ID == "" {
		stored.ID = NewID()
	}
	if stored.Status == "" {
		stored.Status = StatusNew
	}
	now := r.now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.leads[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	out := *lead
	return &out, nil
}

func (r *InMemoryRepository) List(ctx context.Context, f ListFilter) ([]*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Lead
	for _, lead := range r.leads {
		if f.Type != "" && lead.Type != f.Type {
			continue
		}
		if f.Status != "" && lead.Status != f.Status {
			continue
		}
		cp := *lead
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Lead, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	if !lead.Status.CanTransitionTo(status) {
		return nil, ErrInvalidTransition
	}
	if lead.Status != status {
		lead.Status = status
		lead.UpdatedAt = r.now().UTC()
	}
	out := *lead
	return &out, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.leads[id]; !ok {
		return ErrLeadNotFound
	}
	delete(r.leads, id)
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)
