package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"focusloop/backend/internal/model"
)

// HistorySink receives the record of every completed phase.
type HistorySink interface {
	Append(ctx context.Context, entry model.HistoryEntry) error
}

// Config contains runtime options for the engine.
type Config struct {
	// TickInterval is the fixed schedule period; the countdown itself is
	// driven by clock deltas, not by counting ticks.
	TickInterval time.Duration
	Clock        Clock
}

// Engine is the phase state machine. A single mutex serializes user
// actions and ticks; the tick goroutine is the only schedule and is
// owned by the engine.
type Engine struct {
	mu             sync.Mutex
	clock          Clock
	history        HistorySink
	tickInterval   time.Duration
	settings       model.Settings
	mode           string
	running        bool
	totalSeconds   int
	remaining      float64
	phaseStartedAt time.Time
	lastTick       time.Time
	stopCh         chan struct{}
	subs           []chan Event
	closed         bool
}

// New returns a paused engine in focus mode with the full focus duration
// remaining.
func New(settings model.Settings, history HistorySink, cfg Config) *Engine {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 250 * time.Millisecond
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}

	total := settings.DurationSeconds(model.ModeFocus)
	return &Engine{
		clock:        cfg.Clock,
		history:      history,
		tickInterval: cfg.TickInterval,
		settings:     settings,
		mode:         model.ModeFocus,
		totalSeconds: total,
		remaining:    float64(total),
	}
}

// Subscribe registers an observer channel. Emission is non-blocking;
// a slow consumer drops events rather than stalling the engine.
func (e *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	e.mu.Lock()
	e.subs = append(e.subs, ch)
	e.mu.Unlock()
	return ch
}

// Unsubscribe removes an observer channel and closes it.
func (e *Engine) Unsubscribe(ch <-chan Event) {
	e.mu.Lock()
	var removed chan Event
	for i, sub := range e.subs {
		if sub == ch {
			removed = sub
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			break
		}
	}
	e.mu.Unlock()

	if removed != nil {
		close(removed)
	}
}

// Start begins the countdown. No-op if already running; starting never
// creates a second tick schedule.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running || e.closed {
		e.mu.Unlock()
		return
	}

	now := e.clock.Now()
	e.running = true
	if e.phaseStartedAt.IsZero() {
		e.phaseStartedAt = now
	}
	e.lastTick = now

	stopCh := make(chan struct{})
	e.stopCh = stopCh
	interval := e.tickInterval
	snap := e.snapshotLocked()
	e.mu.Unlock()

	go e.run(stopCh, interval)
	e.emit(Event{Type: EventState, Snapshot: snap, At: now})
}

// Pause freezes the countdown and cancels the pending tick schedule.
// Idempotent.
func (e *Engine) Pause() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.stopLocked()
	now := e.clock.Now()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.emit(Event{Type: EventState, Snapshot: snap, At: now})
}

// Reset pauses and restores the full planned duration from the current
// settings. Unless keepMode is set the mode is forced back to focus.
func (e *Engine) Reset(keepMode bool) {
	e.mu.Lock()
	e.stopLocked()
	if !keepMode {
		e.mode = model.ModeFocus
	}
	e.reloadPhaseLocked()
	now := e.clock.Now()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.emit(Event{Type: EventState, Snapshot: snap, At: now})
}

// SetMode switches the current mode. While paused this behaves as a
// reset under the new mode so the displayed duration matches
// immediately; while running only the label changes and the in-flight
// countdown is left untouched.
func (e *Engine) SetMode(mode string) error {
	if !model.IsValidMode(mode) {
		return fmt.Errorf("invalid mode %q", mode)
	}

	e.mu.Lock()
	e.mode = mode
	if !e.running {
		e.reloadPhaseLocked()
	}
	now := e.clock.Now()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.emit(Event{Type: EventState, Snapshot: snap, At: now})
	return nil
}

// ApplySettings swaps the settings the engine derives durations from.
// While paused the current phase is refreshed so the display matches;
// while running the countdown is untouched and the new durations apply
// from the next phase boundary.
func (e *Engine) ApplySettings(settings model.Settings) {
	e.mu.Lock()
	e.settings = settings
	if !e.running {
		e.reloadPhaseLocked()
	}
	now := e.clock.Now()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.emit(Event{Type: EventState, Snapshot: snap, At: now})
}

// Tick advances the countdown by the wall-clock delta since the previous
// tick. Exported so tests can drive the machine without the schedule.
func (e *Engine) Tick() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}

	now := e.clock.Now()
	delta := now.Sub(e.lastTick)
	if delta < 0 {
		delta = 0
	}
	e.lastTick = now
	e.remaining -= delta.Seconds()

	if e.remaining > 0 {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.emit(Event{Type: EventTick, Snapshot: snap, At: now})
		return
	}

	// Phase completion. The entry carries the planned duration, not the
	// slightly-negative remainder.
	start := e.phaseStartedAt
	if start.IsZero() {
		start = now.Add(-time.Duration(e.totalSeconds) * time.Second)
	}
	entry := model.HistoryEntry{
		ID:              uuid.NewString(),
		Day:             model.DayKey(now),
		Mode:            e.mode,
		DurationSeconds: e.totalSeconds,
		StartedAt:       start,
		EndedAt:         now,
	}

	e.mode = model.NextMode(e.mode)
	e.reloadPhaseLocked()
	e.phaseStartedAt = now
	e.lastTick = now
	if !e.settings.AutoStart {
		e.stopLocked()
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	if err := e.history.Append(context.Background(), entry); err != nil {
		log.Printf("append history entry: %v", err)
	}
	e.emit(Event{Type: EventCompleted, Snapshot: snap, Entry: &entry, At: now})
}

// Snapshot returns the current state for redraw. Remaining time is never
// reported below zero.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Settings returns the settings the engine currently derives durations
// from.
func (e *Engine) Settings() model.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Close stops the schedule and closes observer channels.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.stopLocked()
	subs := e.subs
	e.subs = nil
	e.mu.Unlock()

	for _, ch := range subs {
		close(ch)
	}
}

func (e *Engine) run(stopCh <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// reloadPhaseLocked re-derives the phase duration from the settings for
// the current mode and restores the full countdown.
func (e *Engine) reloadPhaseLocked() {
	e.totalSeconds = e.settings.DurationSeconds(e.mode)
	e.remaining = float64(e.totalSeconds)
	e.phaseStartedAt = time.Time{}
}

func (e *Engine) stopLocked() {
	e.running = false
	if e.stopCh != nil {
		close(e.stopCh)
		e.stopCh = nil
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	remaining := e.remaining
	if remaining < 0 {
		remaining = 0
	}
	return Snapshot{
		Mode:             e.mode,
		Running:          e.running,
		RemainingSeconds: remaining,
		TotalSeconds:     e.totalSeconds,
	}
}

// emit delivers the event to every subscriber without blocking. Holding
// the mutex here keeps the sends ordered against Unsubscribe/Close, which
// close channels only after removing them under the same lock.
func (e *Engine) emit(event Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, ch := range e.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
