package notify

import (
	"context"
	"time"

	"github.com/irpartners/brokerage-api/internal/leads"
	"github.com/irpartners/brokerage-api/internal/properties"
	"github.com/irpartners/brokerage-api/pkg/logging"
)

// PropertyFinder loads the listing a lead references for richer emails.
type PropertyFinder interface {
	GetByID(ctx context.Context, id string) (*properties.Property, error)
}

// Dispatcher hands leads to the notification service off the request path.
// The queue is bounded; when it is full new leads are dropped rather than
// blocking a form submission.
type Dispatcher struct {
	service    *Service
	properties PropertyFinder
	metrics    metricsRecorder
	logger     *logging.Logger

	queue       chan *leads.Lead
	done        chan struct{}
	sendTimeout time.Duration
}

type metricsRecorder interface {
	NotificationOutcome(outcome string)
}

// DispatcherConfig sizes the queue and bounds each send.
type DispatcherConfig struct {
	QueueSize   int
	SendTimeout time.Duration
}

// NewDispatcher creates a dispatcher and starts its worker. properties and
// metrics may be nil.
func NewDispatcher(service *Service, properties PropertyFinder, m metricsRecorder, cfg DispatcherConfig, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}

	d := &Dispatcher{
		service:     service,
		properties:  properties,
		metrics:     m,
		logger:      logger,
		queue:       make(chan *leads.Lead, cfg.QueueSize),
		done:        make(chan struct{}),
		sendTimeout: cfg.SendTimeout,
	}
	go d.run()
	return d
}

// LeadCreated queues a lead for notification without blocking. A full queue
// drops the notification, never the lead.
func (d *Dispatcher) LeadCreated(lead *leads.Lead) {
	select {
	case d.queue <- lead:
	default:
		d.logger.Warn("notification queue full, dropping", "lead_id", lead.ID)
		d.recordOutcome("dropped")
	}
}

// Close stops accepting leads and drains what is already queued.
func (d *Dispatcher) Close() {
	close(d.queue)
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for lead := range d.queue {
		d.dispatch(lead)
	}
}

func (d *Dispatcher) dispatch(lead *leads.Lead) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	var prop *properties.Property
	if lead.PropertyID != "" && d.properties != nil {
		p, err := d.properties.GetByID(ctx, lead.PropertyID)
		if err != nil {
			// The email still goes out, just without listing details.
			d.logger.Warn("property lookup for notification failed", "error", err, "lead_id", lead.ID)
		} else {
			prop = p
		}
	}

	sent, err := d.service.NotifyLead(ctx, lead, prop)
	switch {
	case err != nil:
		d.recordOutcome("failed")
	case sent:
		d.recordOutcome("sent")
	default:
		d.recordOutcome("skipped")
	}
}

func (d *Dispatcher) recordOutcome(outcome string) {
	if d.metrics != nil {
		d.metrics.NotificationOutcome(outcome)
	}
}
