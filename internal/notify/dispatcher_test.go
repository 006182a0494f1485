package notify

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/irpartners/brokerage-api/internal/leads"
	"github.com/irpartners/brokerage-api/internal/properties"
	"github.com/irpartners/brokerage-api/pkg/logging"
)

type countingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (c *countingMetrics) NotificationOutcome(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = make(map[string]int)
	}
	c.outcomes[outcome]++
}

func (c *countingMetrics) get(outcome string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcomes[outcome]
}

type blockingSender struct {
	release chan struct{}
	mu      sync.Mutex
	count   int
}

func (b *blockingSender) Send(ctx context.Context, msg EmailMessage) error {
	if b.release != nil {
		<-b.release
	}
	b.mu.Lock()
	b.count++
	b.mu.Unlock()
	return nil
}

func TestDispatcherSendsQueuedLeads(t *testing.T) {
	sender := &blockingSender{}
	m := &countingMetrics{}
	svc := NewService(sender, "team@irpartners.com", logging.New("error"))
	d := NewDispatcher(svc, nil, m, DispatcherConfig{QueueSize: 8}, logging.New("error"))

	d.LeadCreated(sampleLead(leads.TypeContact))
	d.LeadCreated(sampleLead(leads.TypeContact))
	d.Close()

	if sender.count != 2 {
		t.Errorf("sent %d emails, want 2", sender.count)
	}
	if m.get("sent") != 2 {
		t.Errorf("sent outcome = %d, want 2", m.get("sent"))
	}
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	sender := &blockingSender{release: make(chan struct{})}
	m := &countingMetrics{}
	svc := NewService(sender, "team@irpartners.com", logging.New("error"))
	d := NewDispatcher(svc, nil, m, DispatcherConfig{QueueSize: 1}, logging.New("error"))

	// First lead parks the worker inside Send, second fills the queue,
	// third has nowhere to go.
	d.LeadCreated(sampleLead(leads.TypeContact))
	waitForQueueDrain(t, d)
	d.LeadCreated(sampleLead(leads.TypeContact))
	d.LeadCreated(sampleLead(leads.TypeContact))

	if m.get("dropped") != 1 {
		t.Errorf("dropped outcome = %d, want 1", m.get("dropped"))
	}

	close(sender.release)
	d.Close()
	if sender.count != 2 {
		t.Errorf("sent %d emails, want 2", sender.count)
	}
}

// waitForQueueDrain waits until the worker has picked up everything queued so
// far, so the next LeadCreated observes a known queue depth.
func waitForQueueDrain(t *testing.T, d *Dispatcher) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for len(d.queue) > 0 {
		select {
		case <-deadline:
			t.Fatal("queue never drained")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestDispatcherLooksUpProperty(t *testing.T) {
	repo := properties.NewInMemoryRepository()
	created, err := repo.Create(context.Background(), &properties.PropertyInput{
		Title:       "Gateway Logistics Center",
		Address:     "100 Commerce Pkwy",
		City:        "Riverside",
		State:       "OH",
		Zip:         "45431",
		Description: "Modern distribution facility with trailer parking.",
		SquareFeet:  52000,
		LeaseOrSale: properties.Lease,
		Status:      properties.StatusAvailable,
	})
	if err != nil {
		t.Fatalf("create property: %v", err)
	}

	sender := &capturingSender{}
	m := &countingMetrics{}
	svc := NewService(sender, "team@irpartners.com", logging.New("error"))
	d := NewDispatcher(svc, repo, m, DispatcherConfig{}, logging.New("error"))

	lead := sampleLead(leads.TypeRequestInfo)
	lead.PropertyID = created.ID
	d.LeadCreated(lead)
	d.Close()

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails", len(sender.sent))
	}
	if want := "Gateway Logistics Center"; !strings.Contains(sender.sent[0].Body, want) {
		t.Errorf("body missing %q", want)
	}
}
