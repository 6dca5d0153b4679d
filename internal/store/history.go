package store

import (
	"context"
	"encoding/json"
	"fmt"

	"focusloop/backend/internal/model"
)

// MaxHistoryEntries caps the persisted log; the oldest entries beyond it
// are silently evicted.
const MaxHistoryEntries = 200

// HistoryLog persists completed phases as a single newest-first record.
type HistoryLog struct {
	records RecordStore
}

func NewHistoryLog(records RecordStore) *HistoryLog {
	return &HistoryLog{records: records}
}

// Load returns the stored entries newest-first. A missing or corrupt
// record yields an empty log; Load never fails.
func (l *HistoryLog) Load(ctx context.Context) []model.HistoryEntry {
	raw, err := l.records.Get(ctx, KeyHistory)
	if err != nil {
		return nil
	}

	var entries []model.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	if len(entries) > MaxHistoryEntries {
		entries = entries[:MaxHistoryEntries]
	}
	return entries
}

// Append prepends the entry, truncates to the cap and persists the full
// sequence.
func (l *HistoryLog) Append(ctx context.Context, entry model.HistoryEntry) error {
	entries := l.Load(ctx)

	next := make([]model.HistoryEntry, 0, len(entries)+1)
	next = append(next, entry)
	next = append(next, entries...)
	if len(next) > MaxHistoryEntries {
		next = next[:MaxHistoryEntries]
	}

	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := l.records.Set(ctx, KeyHistory, string(raw)); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// AggregateForDay counts the focus-mode entries matching day, sums their
// planned durations and picks the most recently completed one. Pure read.
func (l *HistoryLog) AggregateForDay(ctx context.Context, day string) model.DaySummary {
	summary := model.DaySummary{Day: day}

	for _, entry := range l.Load(ctx) {
		if entry.Mode != model.ModeFocus || entry.Day != day {
			continue
		}
		summary.FocusCount++
		summary.FocusTotalSeconds += entry.DurationSeconds
		if summary.LatestFocus == nil {
			// The log is newest-first, so the first match is the most
			// recently completed.
			latest := entry
			summary.LatestFocus = &latest
		}
	}

	return summary
}

// Clear wipes the log.
func (l *HistoryLog) Clear(ctx context.Context) error {
	if err := l.records.Delete(ctx, KeyHistory); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
