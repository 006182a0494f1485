package leads

import (
	"context"
	"errors"
	"testing"
)

// The existence rule lives in the repository, so callers that skip the HTTP
// layer get it too.
func TestInMemoryCreateRejectsUnknownProperty(t *testing.T) {
	checker := &fakePropertyChecker{known: map[string]bool{knownPropertyID: true}}
	repo := NewInMemoryRepository(checker)

	_, err := repo.Create(context.Background(), &Lead{
		Type:       TypeRequestInfo,
		Name:       "Dana Whitfield",
		Email:      "dana@acmefreight.com",
		Message:    "Looking for space.",
		PropertyID: "11111111-2222-3333-4444-555555555555",
	})
	if !errors.Is(err, ErrPropertyNotFound) {
		t.Fatalf("err = %v, want ErrPropertyNotFound", err)
	}

	all, _ := repo.List(context.Background(), ListFilter{})
	if len(all) != 0 {
		t.Errorf("rejected lead was stored")
	}

	lead, err := repo.Create(context.Background(), &Lead{
		Type:       TypeRequestInfo,
		Name:       "Dana Whitfield",
		Email:      "dana@acmefreight.com",
		Message:    "Looking for space.",
		PropertyID: knownPropertyID,
	})
	if err != nil {
		t.Fatalf("Create with known property: %v", err)
	}
	if lead.Status != StatusNew {
		t.Errorf("status = %s", lead.Status)
	}
}
