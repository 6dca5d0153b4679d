package store

import (
	"context"
	"encoding/json"
	"fmt"

	"focusloop/backend/internal/model"
)

// SettingsStore persists the singleton settings record.
type SettingsStore struct {
	records RecordStore
}

func NewSettingsStore(records RecordStore) *SettingsStore {
	return &SettingsStore{records: records}
}

// storedSettings is the lenient on-disk shape: every field is a pointer
// so a partially written or older record merges over the defaults
// field-by-field instead of zeroing what it omits.
type storedSettings struct {
	Theme             *string `json:"theme"`
	FocusMinutes      *int    `json:"focusMinutes"`
	ShortBreakMinutes *int    `json:"shortBreakMinutes"`
	LongBreakMinutes  *int    `json:"longBreakMinutes"`
	GoalSessions      *int    `json:"goalSessions"`
	AutoStart         *bool   `json:"autoStart"`
}

// Load returns the stored settings merged over the defaults. A missing
// or corrupt record yields the full defaults; Load never fails.
func (s *SettingsStore) Load(ctx context.Context) model.Settings {
	settings := model.DefaultSettings()

	raw, err := s.records.Get(ctx, KeySettings)
	if err != nil {
		return settings
	}

	var stored storedSettings
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return settings
	}

	if stored.Theme != nil {
		settings.Theme = *stored.Theme
	}
	if stored.FocusMinutes != nil {
		settings.FocusMinutes = *stored.FocusMinutes
	}
	if stored.ShortBreakMinutes != nil {
		settings.ShortBreakMinutes = *stored.ShortBreakMinutes
	}
	if stored.LongBreakMinutes != nil {
		settings.LongBreakMinutes = *stored.LongBreakMinutes
	}
	if stored.GoalSessions != nil {
		settings.GoalSessions = *stored.GoalSessions
	}
	if stored.AutoStart != nil {
		settings.AutoStart = *stored.AutoStart
	}

	// Stored values may predate the current bounds.
	return settings.Clamp()
}

// Save replaces the stored record with the full settings value. Callers
// clamp before saving; Save performs no validation.
func (s *SettingsStore) Save(ctx context.Context, settings model.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := s.records.Set(ctx, KeySettings, string(raw)); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
