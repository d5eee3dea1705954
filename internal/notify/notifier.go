// Package notify delivers completion notifications to slow collaborators
// (history storage, the XP service) off the coach loop.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/claude/repcoach/internal/models"
)

// Sink consumes notifications. Errors are logged and never retried here;
// sinks that want retries do them internally.
type Sink interface {
	Name() string
	Handle(ctx context.Context, n models.Notification) error
}

// Notifier fans notifications out to sinks on its own goroutine.
type Notifier struct {
	sinks []Sink
	log   *slog.Logger
	ch    chan models.Notification
	done  chan struct{}
	ctx   context.Context
	stop  context.CancelFunc
	once  sync.Once
}

// New starts a notifier with room for size pending notifications.
func New(size int, log *slog.Logger, sinks ...Sink) *Notifier {
	if size <= 0 {
		size = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	n := &Notifier{
		sinks: sinks,
		log:   log,
		ch:    make(chan models.Notification, size),
		done:  make(chan struct{}),
		ctx:   ctx,
		stop:  cancel,
	}
	go n.run()
	return n
}

// Notify queues n without blocking. When the queue is full n is dropped.
func (n *Notifier) Notify(note models.Notification) {
	select {
	case n.ch <- note:
	default:
		n.log.Warn("notification queue full, dropping", "kind", note.Kind, "session_id", note.SessionID)
	}
}

// Close delivers what is queued and stops. If ctx expires first, in-flight
// deliveries are cancelled and the rest dropped. Notify must not be called
// after Close.
func (n *Notifier) Close(ctx context.Context) error {
	n.once.Do(func() { close(n.ch) })
	select {
	case <-n.done:
		return nil
	case <-ctx.Done():
		n.stop()
		<-n.done
		return ctx.Err()
	}
}

func (n *Notifier) run() {
	defer close(n.done)
	for note := range n.ch {
		if n.ctx.Err() != nil {
			continue
		}
		for _, s := range n.sinks {
			if err := s.Handle(n.ctx, note); err != nil {
				n.log.Warn("notification sink failed", "sink", s.Name(), "kind", note.Kind, "error", err)
			}
		}
	}
}
