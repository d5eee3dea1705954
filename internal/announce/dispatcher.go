// Package announce turns announcements into audio. Every sound the coach
// makes goes through one Dispatcher, whose single speaker goroutine plays
// items strictly one at a time.
package announce

import (
	"context"
	"log/slog"
	"sync"

	"github.com/claude/repcoach/internal/models"
)

// DefaultQueueSize bounds the announcements waiting to be spoken.
const DefaultQueueSize = 32

// Synthesizer converts text to playable audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Player plays synthesized audio and short cue sounds. Both calls block until
// playback finishes or ctx is cancelled.
type Player interface {
	Play(ctx context.Context, audio []byte) error
	Cue(ctx context.Context, cue models.Cue) error
}

// Dispatcher serializes announcements onto the single audio output.
type Dispatcher struct {
	synth  Synthesizer
	player Player
	log    *slog.Logger
	limit  int

	mu      sync.Mutex
	queue   []models.Announcement
	closed  bool
	current context.CancelFunc // cancels the item being spoken

	wake chan struct{}
	done chan struct{}
	ctx  context.Context
	stop context.CancelFunc
}

// NewDispatcher starts the speaker goroutine. queueSize <= 0 selects
// DefaultQueueSize.
func NewDispatcher(synth Synthesizer, player Player, queueSize int, log *slog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		synth:  synth,
		player: player,
		log:    log,
		limit:  queueSize,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		ctx:    ctx,
		stop:   cancel,
	}
	go d.run()
	return d
}

// Dispatch enqueues announcements in order. It never blocks: when the queue
// is full the oldest beep is dropped to make room, and failing that
// the new item is dropped.
func (d *Dispatcher) Dispatch(items []models.Announcement) {
	if len(items) == 0 {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.log.Warn("dispatch after close", "count", len(items))
		return
	}
	for _, a := range items {
		if len(d.queue) >= d.limit && !d.evictCueLocked() {
			d.log.Warn("announcement queue full, dropping", "text", a.Text, "cue", a.Cue)
			continue
		}
		d.queue = append(d.queue, a)
	}
	d.mu.Unlock()
	d.signal()
}

// evictable reports whether an item may be shed on overflow: bare cues and
// countdown beeps, whose text only restates the beep.
func evictable(a models.Announcement) bool {
	switch a.Cue {
	case models.CueBeep30, models.CueBeep15, models.CueBeep5:
		return true
	}
	return a.Text == ""
}

// evictCueLocked removes the oldest queued evictable item.
func (d *Dispatcher) evictCueLocked() bool {
	for i, a := range d.queue {
		if evictable(a) {
			d.log.Warn("announcement queue full, dropping beep", "cue", a.Cue, "text", a.Text)
			d.queue = append(d.queue[:i], d.queue[i+1:]...)
			return true
		}
	}
	return false
}

// Flush discards every queued announcement and interrupts the one being
// spoken.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	dropped := len(d.queue)
	d.queue = nil
	if d.current != nil {
		d.current()
	}
	d.mu.Unlock()
	if dropped > 0 {
		d.log.Debug("flushed announcements", "dropped", dropped)
	}
}

// Pending returns the number of queued, unspoken announcements.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Close speaks what is already queued, then stops the speaker. If ctx expires
// first the remaining items are abandoned.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return nil
	}
	d.closed = true
	d.mu.Unlock()
	d.signal()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		d.stop()
		<-d.done
		return ctx.Err()
	}
}

func (d *Dispatcher) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) next() (models.Announcement, context.Context, bool, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) == 0 {
		return models.Announcement{}, nil, false, d.closed
	}
	a := d.queue[0]
	d.queue = d.queue[1:]
	ctx, cancel := context.WithCancel(d.ctx)
	d.current = cancel
	return a, ctx, true, false
}

func (d *Dispatcher) finishItem() {
	d.mu.Lock()
	if d.current != nil {
		d.current()
		d.current = nil
	}
	d.mu.Unlock()
}

func (d *Dispatcher) run() {
	defer close(d.done)
	defer d.stop()
	for {
		a, ctx, ok, closed := d.next()
		if closed {
			return
		}
		if !ok {
			select {
			case <-d.wake:
			case <-d.ctx.Done():
				return
			}
			continue
		}
		d.speak(ctx, a)
		d.finishItem()
		if d.ctx.Err() != nil {
			return
		}
	}
}

// speak plays the cue first, then the text. Failures are logged and the item
// is skipped.
func (d *Dispatcher) speak(ctx context.Context, a models.Announcement) {
	if a.Cue != models.CueNone {
		if err := d.player.Cue(ctx, a.Cue); err != nil && ctx.Err() == nil {
			d.log.Warn("playing cue", "cue", a.Cue, "error", err)
		}
	}
	if a.Text == "" || ctx.Err() != nil {
		return
	}
	audio, err := d.synth.Synthesize(ctx, a.Text)
	if err != nil {
		if ctx.Err() == nil {
			d.log.Warn("synthesizing speech", "text", a.Text, "error", err)
		}
		return
	}
	if err := d.player.Play(ctx, audio); err != nil && ctx.Err() == nil {
		d.log.Warn("playing speech", "text", a.Text, "error", err)
	}
}
