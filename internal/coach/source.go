package coach

import (
	"context"
	"errors"
	"time"

	"github.com/claude/repcoach/internal/models"
)

// ErrInboxFull is returned by TrySubmit when the loop is not keeping up.
var ErrInboxFull = errors.New("command inbox full")

// Request is one input to the loop: either a transcribed utterance or a
// request to start the named plan.
type Request struct {
	Utterance string
	StartPlan string
	// Reply, when non-nil, receives the outcome of a start request. It must
	// be buffered; the loop never blocks on it.
	Reply chan error
}

// Source is polled by the loop once per tick.
type Source interface {
	// Poll waits at most timeout for the next request.
	Poll(ctx context.Context, timeout time.Duration) (Request, bool)
}

// Inbox is a channel-backed Source safe for many producers.
type Inbox struct {
	ch chan Request
}

// NewInbox creates an inbox holding up to size undelivered requests.
func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = 16
	}
	return &Inbox{ch: make(chan Request, size)}
}

// Poll implements Source.
func (in *Inbox) Poll(ctx context.Context, timeout time.Duration) (Request, bool) {
	select {
	case req := <-in.ch:
		return req, true
	default:
	}
	if timeout <= 0 {
		return Request{}, false
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case req := <-in.ch:
		return req, true
	case <-t.C:
	case <-ctx.Done():
	}
	return Request{}, false
}

// TrySubmit enqueues req without waiting.
func (in *Inbox) TrySubmit(req Request) error {
	select {
	case in.ch <- req:
		return nil
	default:
		return ErrInboxFull
	}
}

// Say enqueues an utterance.
func (in *Inbox) Say(text string) error {
	return in.TrySubmit(Request{Utterance: text})
}

// Start asks the loop to start plan and waits for the outcome.
func (in *Inbox) Start(ctx context.Context, plan string) error {
	reply := make(chan error, 1)
	if err := in.TrySubmit(Request{StartPlan: plan, Reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Client is the handle request handlers use to talk to a running loop.
type Client struct {
	*Inbox
	loop *Loop
}

// NewClient pairs an inbox with the loop consuming it.
func NewClient(inbox *Inbox, loop *Loop) *Client {
	return &Client{Inbox: inbox, loop: loop}
}

// Status returns the loop's latest snapshot.
func (c *Client) Status() models.Status {
	return c.loop.Status()
}
