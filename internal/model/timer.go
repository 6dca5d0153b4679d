package model

import "time"

const (
	ModeFocus      = "focus"
	ModeShortBreak = "short_break"
	ModeLongBreak  = "long_break"

	ThemeDark  = "dark"
	ThemeLight = "light"
)

const (
	DefaultFocusMinutes      = 25
	DefaultShortBreakMinutes = 5
	DefaultLongBreakMinutes  = 15
	DefaultGoalSessions      = 8
)

const (
	MinFocusMinutes = 1
	MaxFocusMinutes = 120

	MinShortBreakMinutes = 1
	MaxShortBreakMinutes = 60

	MinLongBreakMinutes = 1
	MaxLongBreakMinutes = 90

	MinGoalSessions = 1
	MaxGoalSessions = 30
)

// Settings is the singleton user preference record.
type Settings struct {
	Theme             string `json:"theme"`
	FocusMinutes      int    `json:"focusMinutes"`
	ShortBreakMinutes int    `json:"shortBreakMinutes"`
	LongBreakMinutes  int    `json:"longBreakMinutes"`
	GoalSessions      int    `json:"goalSessions"`
	AutoStart         bool   `json:"autoStart"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:             ThemeDark,
		FocusMinutes:      DefaultFocusMinutes,
		ShortBreakMinutes: DefaultShortBreakMinutes,
		LongBreakMinutes:  DefaultLongBreakMinutes,
		GoalSessions:      DefaultGoalSessions,
		AutoStart:         false,
	}
}

// Clamp forces every field into its valid range. Callers apply it at the
// boundary before persisting; the store itself never validates.
func (s Settings) Clamp() Settings {
	if s.Theme != ThemeLight {
		s.Theme = ThemeDark
	}
	s.FocusMinutes = clampInt(s.FocusMinutes, MinFocusMinutes, MaxFocusMinutes)
	s.ShortBreakMinutes = clampInt(s.ShortBreakMinutes, MinShortBreakMinutes, MaxShortBreakMinutes)
	s.LongBreakMinutes = clampInt(s.LongBreakMinutes, MinLongBreakMinutes, MaxLongBreakMinutes)
	s.GoalSessions = clampInt(s.GoalSessions, MinGoalSessions, MaxGoalSessions)
	return s
}

// DurationSeconds returns the planned phase length for a mode.
func (s Settings) DurationSeconds(mode string) int {
	switch mode {
	case ModeShortBreak:
		return s.ShortBreakMinutes * 60
	case ModeLongBreak:
		return s.LongBreakMinutes * 60
	default:
		return s.FocusMinutes * 60
	}
}

// HistoryEntry records one completed phase. Immutable once created.
type HistoryEntry struct {
	ID              string    `json:"id"`
	Day             string    `json:"day"`
	Mode            string    `json:"mode"`
	DurationSeconds int       `json:"durationSeconds"`
	StartedAt       time.Time `json:"startedAt"`
	EndedAt         time.Time `json:"endedAt"`
}

// DaySummary aggregates completed focus phases for one calendar day.
type DaySummary struct {
	Day               string        `json:"day"`
	FocusCount        int           `json:"focusCount"`
	FocusTotalSeconds int           `json:"focusTotalSeconds"`
	LatestFocus       *HistoryEntry `json:"latestFocus,omitempty"`
}

// DayKey formats a timestamp as the local calendar-date key used for
// daily aggregation.
func DayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

func IsValidMode(mode string) bool {
	return mode == ModeFocus || mode == ModeShortBreak || mode == ModeLongBreak
}

// NextMode is the fixed advancement rule on phase completion. Long breaks
// are never chained automatically; they stay reachable only by an explicit
// mode switch.
func NextMode(mode string) string {
	if mode == ModeFocus {
		return ModeShortBreak
	}
	return ModeFocus
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
