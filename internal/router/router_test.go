package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"focusloop/backend/internal/db"
	"focusloop/backend/internal/engine"
	"focusloop/backend/internal/handler"
	"focusloop/backend/internal/router"
	"focusloop/backend/internal/service"
	"focusloop/backend/internal/store"
)

type stateEnvelope struct {
	State struct {
		Mode             string  `json:"mode"`
		Running          bool    `json:"running"`
		RemainingSeconds float64 `json:"remainingSeconds"`
		TotalSeconds     int     `json:"totalSeconds"`
	} `json:"state"`
}

type settingsEnvelope struct {
	Settings struct {
		Theme        string `json:"theme"`
		FocusMinutes int    `json:"focusMinutes"`
		GoalSessions int    `json:"goalSessions"`
	} `json:"settings"`
	State *struct {
		TotalSeconds int `json:"totalSeconds"`
	} `json:"state"`
}

type historyEnvelope struct {
	Entries []struct {
		ID   string `json:"id"`
		Mode string `json:"mode"`
	} `json:"entries"`
}

type tokenEnvelope struct {
	Token string `json:"token"`
}

func TestTimerFlow(t *testing.T) {
	server := setupTestServer(t, "")

	status, body := requestJSON(t, server, http.MethodGet, "/api/timer", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for state, got %d: %s", status, string(body))
	}
	var state stateEnvelope
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if state.State.Mode != "focus" || state.State.Running {
		t.Fatalf("expected paused focus state, got %+v", state.State)
	}
	if state.State.RemainingSeconds != 1500 {
		t.Fatalf("expected default 1500s remaining, got %v", state.State.RemainingSeconds)
	}

	status, _ = requestJSON(t, server, http.MethodPost, "/api/timer/start", "", map[string]any{})
	if status != http.StatusOK {
		t.Fatalf("expected 200 on start, got %d", status)
	}

	status, body = requestJSON(t, server, http.MethodPost, "/api/timer/pause", "", map[string]any{})
	if status != http.StatusOK {
		t.Fatalf("expected 200 on pause, got %d", status)
	}
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("unmarshal pause state: %v", err)
	}
	if state.State.Running {
		t.Fatal("expected paused after pause")
	}

	status, body = requestJSON(t, server, http.MethodPost, "/api/timer/mode", "", map[string]string{"mode": "short_break"})
	if status != http.StatusOK {
		t.Fatalf("expected 200 on mode switch, got %d: %s", status, string(body))
	}
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("unmarshal mode state: %v", err)
	}
	if state.State.Mode != "short_break" || state.State.TotalSeconds != 300 {
		t.Fatalf("expected 300s short break, got %+v", state.State)
	}

	status, _ = requestJSON(t, server, http.MethodPost, "/api/timer/mode", "", map[string]string{"mode": "nap"})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid mode, got %d", status)
	}

	status, body = requestJSON(t, server, http.MethodPost, "/api/timer/reset", "", map[string]bool{"keepMode": false})
	if status != http.StatusOK {
		t.Fatalf("expected 200 on reset, got %d", status)
	}
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("unmarshal reset state: %v", err)
	}
	if state.State.Mode != "focus" || state.State.RemainingSeconds != 1500 {
		t.Fatalf("expected full focus reset, got %+v", state.State)
	}
}

func TestSettingsClampAndPersistence(t *testing.T) {
	server := setupTestServer(t, "")

	status, body := requestJSON(t, server, http.MethodPut, "/api/settings", "", map[string]any{
		"theme":             "light",
		"focusMinutes":      999,
		"shortBreakMinutes": 5,
		"longBreakMinutes":  15,
		"goalSessions":      0,
		"autoStart":         true,
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 on settings update, got %d: %s", status, string(body))
	}
	var updated settingsEnvelope
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("unmarshal settings: %v", err)
	}
	if updated.Settings.FocusMinutes != 120 {
		t.Fatalf("expected focusMinutes clamped to 120, got %d", updated.Settings.FocusMinutes)
	}
	if updated.Settings.GoalSessions != 1 {
		t.Fatalf("expected goalSessions clamped to 1, got %d", updated.Settings.GoalSessions)
	}
	if updated.State == nil || updated.State.TotalSeconds != 120*60 {
		t.Fatalf("expected paused timer refreshed to 7200s, got %+v", updated.State)
	}

	status, body = requestJSON(t, server, http.MethodGet, "/api/settings", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for settings, got %d", status)
	}
	var loaded settingsEnvelope
	if err := json.Unmarshal(body, &loaded); err != nil {
		t.Fatalf("unmarshal loaded settings: %v", err)
	}
	if loaded.Settings.Theme != "light" || loaded.Settings.FocusMinutes != 120 {
		t.Fatalf("expected persisted clamped settings, got %+v", loaded.Settings)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	server := setupTestServer(t, "")

	status, body := requestJSON(t, server, http.MethodGet, "/api/history?limit=10", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for history, got %d", status)
	}
	var history historyEnvelope
	if err := json.Unmarshal(body, &history); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if len(history.Entries) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(history.Entries))
	}

	status, _ = requestJSON(t, server, http.MethodGet, "/api/history/day/not-a-day", "", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed day, got %d", status)
	}

	status, body = requestJSON(t, server, http.MethodGet, "/api/history/day/2026-08-26", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for day summary, got %d: %s", status, string(body))
	}

	status, _ = requestJSON(t, server, http.MethodDelete, "/api/history", "", nil)
	if status != http.StatusNoContent {
		t.Fatalf("expected 204 on clear, got %d", status)
	}
}

func TestPassphraseLock(t *testing.T) {
	server := setupTestServer(t, "open sesame")

	status, _ := requestJSON(t, server, http.MethodGet, "/api/timer", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	status, _ = requestJSON(t, server, http.MethodGet, "/api/timer", "garbage", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", status)
	}

	status, _ = requestJSON(t, server, http.MethodPost, "/api/auth/token", "", map[string]string{"passphrase": "wrong"})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong passphrase, got %d", status)
	}

	status, body := requestJSON(t, server, http.MethodPost, "/api/auth/token", "", map[string]string{"passphrase": "open sesame"})
	if status != http.StatusOK {
		t.Fatalf("expected 200 for correct passphrase, got %d: %s", status, string(body))
	}
	var token tokenEnvelope
	if err := json.Unmarshal(body, &token); err != nil {
		t.Fatalf("unmarshal token: %v", err)
	}
	if token.Token == "" {
		t.Fatal("expected a token")
	}

	status, _ = requestJSON(t, server, http.MethodGet, "/api/timer", token.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", status)
	}
}

func TestCORSPreflight(t *testing.T) {
	server := setupTestServer(t, "")
	req := httptest.NewRequest(http.MethodOptions, "/api/timer/start", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	recorder := httptest.NewRecorder()

	server.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", recorder.Code)
	}
	if recorder.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin header: %s", recorder.Header().Get("Access-Control-Allow-Origin"))
	}
}

func setupTestServer(t *testing.T, passphrase string) http.Handler {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	_, currentFile, _, _ := runtime.Caller(0)
	migrationsDir := filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")
	if err := db.RunMigrations(database, migrationsDir); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	records := store.NewSQLiteRecords(database)
	settingsStore := store.NewSettingsStore(records)
	historyLog := store.NewHistoryLog(records)

	eng := engine.New(settingsStore.Load(t.Context()), historyLog, engine.Config{
		TickInterval: time.Hour,
	})
	t.Cleanup(eng.Close)

	authService, err := service.NewAuthService(passphrase, "test-secret", 24*time.Hour)
	if err != nil {
		t.Fatalf("init auth: %v", err)
	}

	authHandler := handler.NewAuthHandler(authService)
	timerHandler := handler.NewTimerHandler(eng, settingsStore, historyLog)

	return router.New(authService, authHandler, timerHandler, []string{"http://localhost:5173"})
}

func requestJSON(
	t *testing.T,
	server http.Handler,
	method, path, token string,
	body interface{},
) (int, []byte) {
	t.Helper()

	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		payload = raw
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder.Code, recorder.Body.Bytes()
}
