package engine

import (
	"time"

	"focusloop/backend/internal/model"
)

type EventType string

const (
	// EventState marks a user-driven state change (start, pause, reset,
	// mode switch, settings change).
	EventState EventType = "state"
	// EventTick reports countdown progress while running.
	EventTick EventType = "tick"
	// EventCompleted fires once per phase completion; Entry carries the
	// logged history record for the completion cue.
	EventCompleted EventType = "completed"
)

// Snapshot is the read-only state the presentation layer redraws from.
type Snapshot struct {
	Mode             string  `json:"mode"`
	Running          bool    `json:"running"`
	RemainingSeconds float64 `json:"remainingSeconds"`
	TotalSeconds     int     `json:"totalSeconds"`
}

type Event struct {
	Type     EventType           `json:"type"`
	Snapshot Snapshot            `json:"snapshot"`
	Entry    *model.HistoryEntry `json:"entry,omitempty"`
	At       time.Time           `json:"at"`
}
