package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "landregistry/pkg/platform/audit"
)

var (
	ErrBufferFull  = errors.New("audit buffer full")
	ErrClosed      = errors.New("audit publisher closed")
	ErrNotListable = errors.New("audit store does not support listing")
)

// Publisher stamps events and hands them to a Store, either inline or through
// a bounded buffer drained by one background goroutine.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	buffer int
	events chan audit.Event
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode. Emit returns
// ErrBufferFull instead of blocking when the buffer is saturated.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.buffer = size
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer > 0 {
		p.events = make(chan audit.Event, p.buffer)
		p.done = make(chan struct{})
		go p.run()
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.events == nil {
		return p.store.Append(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.events <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

// List returns the events recorded for a subject.
func (p *Publisher) List(ctx context.Context, subject string) ([]audit.Event, error) {
	lister, ok := p.store.(audit.Lister)
	if !ok {
		return nil, ErrNotListable
	}
	return lister.ListBySubject(ctx, subject)
}

// Close stops accepting events and drains whatever is buffered.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.events != nil {
		close(p.events)
	}
	p.mu.Unlock()

	if p.done != nil {
		<-p.done
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	for event := range p.events {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Error("failed to persist audit event",
				"action", event.Action,
				"subject", event.Subject,
				"error", err,
			)
		}
	}
}
