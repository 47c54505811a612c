package display

import (
	"context"
	"errors"
	"sync"
	"time"

	appLog "classclock/internal/log"
	"classclock/internal/schedule"
)

// Sink receives rendered frames. SetTitle is only called when the title
// actually changed, so sinks backed by expensive title writes (browser
// tabs, window managers) are not hammered every tick.
type Sink interface {
	Render(Frame)
	SetTitle(string)
}

// StateProvider yields the current immutable schedule state. Reloads swap
// the state behind this interface; the ticker itself never mutates it.
type StateProvider interface {
	Current() *schedule.State
}

// Ticker recomputes a full frame from the current instant on a fixed
// period. Each tick is an independent, synchronous recomputation; the only
// state carried across ticks is the last-rendered title.
type Ticker struct {
	states StateProvider
	sink   Sink
	prefs  *Prefs
	period time.Duration

	now func() time.Time

	lastTitle string
}

func NewTicker(states StateProvider, sink Sink, prefs *Prefs, period time.Duration) *Ticker {
	if period <= 0 {
		period = 200 * time.Millisecond
	}
	return &Ticker{
		states: states,
		sink:   sink,
		prefs:  prefs,
		period: period,
		now:    time.Now,
	}
}

// Run drives the tick loop until ctx is canceled. No failure terminates
// the loop; degraded states render empty frames.
func (t *Ticker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick(t.now())
		}
	}
}

// Tick performs one recomputation at now and pushes the result to the sink.
func (t *Ticker) Tick(now time.Time) Frame {
	frame, err := Compute(t.states.Current(), now, t.prefs.Compact())
	if err != nil && !errors.Is(err, schedule.ErrNoSchedule) {
		appLog.Debug("display: degraded frame", "reason", err.Error())
	}

	t.sink.Render(frame)
	if frame.TitleText != t.lastTitle {
		t.lastTitle = frame.TitleText
		t.sink.SetTitle(frame.TitleText)
	}
	return frame
}

// Holder is a Sink retaining the latest frame for HTTP handlers. It is the
// in-process display surface: the embedded page (and /api/frame) reads
// from here.
type Holder struct {
	mu    sync.RWMutex
	frame Frame
}

func (h *Holder) Render(f Frame) {
	h.mu.Lock()
	h.frame = f
	h.mu.Unlock()
}

func (h *Holder) SetTitle(string) {}

// Latest returns the most recently rendered frame.
func (h *Holder) Latest() Frame {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.frame
}
