package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "focusloop/backend/internal/errors"
	"focusloop/backend/internal/engine"
	"focusloop/backend/internal/model"
	"focusloop/backend/internal/store"
)

type TimerHandler struct {
	engine   *engine.Engine
	settings *store.SettingsStore
	history  *store.HistoryLog
}

type resetRequest struct {
	KeepMode bool `json:"keepMode"`
}

type switchModeRequest struct {
	Mode string `json:"mode"`
}

type settingsRequest struct {
	Theme             string `json:"theme"`
	FocusMinutes      int    `json:"focusMinutes"`
	ShortBreakMinutes int    `json:"shortBreakMinutes"`
	LongBreakMinutes  int    `json:"longBreakMinutes"`
	GoalSessions      int    `json:"goalSessions"`
	AutoStart         bool   `json:"autoStart"`
}

func NewTimerHandler(eng *engine.Engine, settings *store.SettingsStore, history *store.HistoryLog) *TimerHandler {
	return &TimerHandler{
		engine:   eng,
		settings: settings,
		history:  history,
	}
}

func (h *TimerHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.engine.Snapshot()})
}

func (h *TimerHandler) Start(c *gin.Context) {
	h.engine.Start()
	c.JSON(http.StatusOK, gin.H{"state": h.engine.Snapshot()})
}

func (h *TimerHandler) Pause(c *gin.Context) {
	h.engine.Pause()
	c.JSON(http.StatusOK, gin.H{"state": h.engine.Snapshot()})
}

func (h *TimerHandler) Reset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.BadRequest("invalid_json", "invalid request body"))
		return
	}

	h.engine.Reset(req.KeepMode)
	c.JSON(http.StatusOK, gin.H{"state": h.engine.Snapshot()})
}

func (h *TimerHandler) SwitchMode(c *gin.Context) {
	var req switchModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.BadRequest("invalid_json", "invalid request body"))
		return
	}

	if err := h.engine.SetMode(req.Mode); err != nil {
		writeError(c, apperrors.BadRequest("invalid_mode", "mode must be one of focus, short_break, long_break"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": h.engine.Snapshot()})
}

// Events streams engine events as server-sent events until the client
// disconnects.
func (h *TimerHandler) Events(c *gin.Context) {
	ch := h.engine.Subscribe(16)
	defer h.engine.Unsubscribe(ch)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(string(event.Type), event)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *TimerHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"settings": h.settings.Load(c.Request.Context())})
}

func (h *TimerHandler) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.BadRequest("invalid_json", "invalid request body"))
		return
	}

	settings := model.Settings{
		Theme:             req.Theme,
		FocusMinutes:      req.FocusMinutes,
		ShortBreakMinutes: req.ShortBreakMinutes,
		LongBreakMinutes:  req.LongBreakMinutes,
		GoalSessions:      req.GoalSessions,
		AutoStart:         req.AutoStart,
	}.Clamp()

	if err := h.settings.Save(c.Request.Context(), settings); err != nil {
		writeError(c, apperrors.Internal("failed to save settings"))
		return
	}
	h.engine.ApplySettings(settings)

	c.JSON(http.StatusOK, gin.H{
		"settings": settings,
		"state":    h.engine.Snapshot(),
	})
}

func (h *TimerHandler) GetHistory(c *gin.Context) {
	limit := 50
	if rawLimit := c.Query("limit"); rawLimit != "" {
		if parsed, err := strconv.Atoi(rawLimit); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 || limit > store.MaxHistoryEntries {
		limit = 50
	}

	entries := h.history.Load(c.Request.Context())
	if len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *TimerHandler) DaySummary(c *gin.Context) {
	day := c.Param("day")
	if _, err := time.ParseInLocation("2006-01-02", day, time.Local); err != nil {
		writeError(c, apperrors.BadRequest("invalid_day", "day must be formatted YYYY-MM-DD"))
		return
	}

	summary := h.history.AggregateForDay(c.Request.Context(), day)
	c.JSON(http.StatusOK, gin.H{
		"summary":      summary,
		"goalSessions": h.engine.Settings().GoalSessions,
	})
}

func (h *TimerHandler) ClearHistory(c *gin.Context) {
	if err := h.history.Clear(c.Request.Context()); err != nil {
		writeError(c, apperrors.Internal("failed to clear history"))
		return
	}
	c.Status(http.StatusNoContent)
}
