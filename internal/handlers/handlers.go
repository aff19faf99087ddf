package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Billy-Davies-2/scorebored/internal/dal"
	"github.com/Billy-Davies-2/scorebored/internal/logger"
	"github.com/Billy-Davies-2/scorebored/internal/match"
	"github.com/Billy-Davies-2/scorebored/internal/models"
	"github.com/Billy-Davies-2/scorebored/internal/pubsub"
	"github.com/Billy-Davies-2/scorebored/internal/scoreboard"
)

// KeepaliveInterval is how often an idle SSE stream gets a comment line.
var KeepaliveInterval = 30 * time.Second

// APIHandlers contains all API handler methods
type APIHandlers struct {
	svc    *scoreboard.Service
	events pubsub.Broker
	checks []check
}

type check struct {
	name string
	fn   func(context.Context) error
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(svc *scoreboard.Service, events pubsub.Broker) *APIHandlers {
	return &APIHandlers{
		svc:    svc,
		events: events,
	}
}

// AddCheck registers a dependency probed by the health and readiness
// endpoints.
func (h *APIHandlers) AddCheck(name string, fn func(context.Context) error) {
	h.checks = append(h.checks, check{name: name, fn: fn})
}

// Routes builds the HTTP API. guard wraps every route that changes state;
// nil leaves them open.
func (h *APIHandlers) Routes(guard func(http.HandlerFunc) http.HandlerFunc) *http.ServeMux {
	if guard == nil {
		guard = func(next http.HandlerFunc) http.HandlerFunc { return next }
	}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/match/state", h.GetState)
	mux.HandleFunc("/api/match/point", guard(h.ScorePoint))
	mux.HandleFunc("/api/match/undo", guard(h.UndoPoint))
	mux.HandleFunc("/api/match/wins", guard(h.AdjustWins))
	mux.HandleFunc("/api/match/switch-sides", guard(h.SwitchSides))
	mux.HandleFunc("/api/match/switch-servers", guard(h.SwitchServers))
	mux.HandleFunc("/api/match/server", guard(h.SetServer))
	mux.HandleFunc("/api/match/reset", guard(h.Reset))
	mux.HandleFunc("/api/match/start", guard(h.Start))
	mux.HandleFunc("/api/match/stop", guard(h.Stop))
	mux.HandleFunc("/api/match/intro", guard(h.Introduce))
	mux.HandleFunc("/api/match/settings", guard(h.Configure))
	mux.HandleFunc("/api/match/team", guard(h.UpdateTeam))

	mux.HandleFunc("/api/presets", h.ListPresets)
	mux.HandleFunc("/api/presets/save", guard(h.SavePreset))
	mux.HandleFunc("/api/presets/delete", guard(h.DeletePreset))

	mux.HandleFunc("/api/events", h.EventsSSE)

	mux.HandleFunc("/api/health", h.Health)
	mux.HandleFunc("/healthz", h.Liveness) // Kubernetes liveness probe
	mux.HandleFunc("/readyz", h.Readiness) // Kubernetes readiness probe
	return mux
}

type sideRequest struct {
	Side match.Side `json:"side"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto status codes.
func writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dal.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, match.ErrInvalidSide),
		errors.Is(err, match.ErrInvalidGameLength),
		errors.Is(err, match.ErrInvalidMatchLength),
		errors.Is(err, match.ErrInvalidStyle),
		errors.Is(err, match.ErrInvalidColor),
		errors.Is(err, models.ErrEmptyName):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "op", op, "error", err)
	} else {
		logger.Warn("Request rejected", "op", op, "error", err)
	}
	http.Error(w, err.Error(), status)
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if v == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.Warn("Failed to decode request", "path", r.URL.Path, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// control handles the body-less POST operations.
func (h *APIHandlers) control(op string, fn func(context.Context) (models.Snapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !decode(w, r, nil) {
			return
		}
		snap, err := fn(r.Context())
		if err != nil {
			writeError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// GetState returns the current scoreboard
func (h *APIHandlers) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Snapshot())
}

// ScorePoint records a point call for a side
func (h *APIHandlers) ScorePoint(w http.ResponseWriter, r *http.Request) {
	var req sideRequest
	if !decode(w, r, &req) {
		return
	}
	snap, err := h.svc.Point(r.Context(), req.Side)
	if err != nil {
		writeError(w, "point", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// UndoPoint takes a point away from a side
func (h *APIHandlers) UndoPoint(w http.ResponseWriter, r *http.Request) {
	var req sideRequest
	if !decode(w, r, &req) {
		return
	}
	snap, err := h.svc.Undo(r.Context(), req.Side)
	if err != nil {
		writeError(w, "undo", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// AdjustWins adds (delta > 0) or removes (delta < 0) one game win.
func (h *APIHandlers) AdjustWins(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Side  match.Side `json:"side"`
		Delta int        `json:"delta"`
	}
	if !decode(w, r, &req) {
		return
	}

	var (
		snap models.Snapshot
		err  error
	)
	switch {
	case req.Delta > 0:
		snap, err = h.svc.AddWin(r.Context(), req.Side)
	case req.Delta < 0:
		snap, err = h.svc.RemoveWin(r.Context(), req.Side)
	default:
		http.Error(w, "delta must be 1 or -1", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, "wins", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *APIHandlers) SwitchSides(w http.ResponseWriter, r *http.Request) {
	h.control("switch_sides", h.svc.SwitchSides)(w, r)
}

func (h *APIHandlers) SwitchServers(w http.ResponseWriter, r *http.Request) {
	h.control("switch_servers", h.svc.SwitchServers)(w, r)
}

// SetServer assigns the serve; "none" clears it.
func (h *APIHandlers) SetServer(w http.ResponseWriter, r *http.Request) {
	var req sideRequest
	if !decode(w, r, &req) {
		return
	}
	snap, err := h.svc.SetServer(r.Context(), req.Side)
	if err != nil {
		writeError(w, "set_server", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *APIHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	logger.Info("Resetting match")
	h.control("reset", h.svc.Reset)(w, r)
}

func (h *APIHandlers) Start(w http.ResponseWriter, r *http.Request) {
	h.control("start", h.svc.Start)(w, r)
}

func (h *APIHandlers) Stop(w http.ResponseWriter, r *http.Request) {
	h.control("stop", h.svc.Stop)(w, r)
}

func (h *APIHandlers) Introduce(w http.ResponseWriter, r *http.Request) {
	h.control("introduce", h.svc.Introduce)(w, r)
}

// Configure replaces the match settings. Omitted fields keep their current
// values.
func (h *APIHandlers) Configure(w http.ResponseWriter, r *http.Request) {
	req := h.svc.Snapshot().Settings
	if !decode(w, r, &req) {
		return
	}
	snap, err := h.svc.Configure(r.Context(), req)
	if err != nil {
		writeError(w, "configure", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// UpdateTeam renames a side, or applies a stored preset when presetId is set.
func (h *APIHandlers) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Side     match.Side      `json:"side"`
		Name     string          `json:"name"`
		Color    match.TeamColor `json:"color"`
		PresetID string          `json:"presetId"`
	}
	if !decode(w, r, &req) {
		return
	}

	var (
		snap models.Snapshot
		err  error
	)
	if req.PresetID != "" {
		snap, err = h.svc.ApplyPreset(r.Context(), req.Side, req.PresetID)
	} else {
		snap, err = h.svc.RenameTeam(r.Context(), req.Side, req.Name, req.Color)
	}
	if err != nil {
		writeError(w, "team", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ListPresets returns the stored team presets
func (h *APIHandlers) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := h.svc.Presets()
	if err != nil {
		writeError(w, "list_presets", err)
		return
	}
	writeJSON(w, http.StatusOK, presets)
}

func (h *APIHandlers) SavePreset(w http.ResponseWriter, r *http.Request) {
	var preset models.TeamPreset
	if !decode(w, r, &preset) {
		return
	}
	saved, err := h.svc.SavePreset(preset)
	if err != nil {
		writeError(w, "save_preset", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *APIHandlers) DeletePreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.DeletePreset(req.ID); err != nil {
		writeError(w, "delete_preset", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// EventsSSE provides Server-Sent Events for realtime updates. The stream
// opens with the current scoreboard so displays never start blank.
func (h *APIHandlers) EventsSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	eventChan := h.events.Subscribe()
	defer h.events.Unsubscribe(eventChan)

	fmt.Fprintf(w, "data: {\"type\":\"connected\"}\n\n")
	if initial, err := pubsub.NewEvent(pubsub.EventScoreUpdate, h.svc.Snapshot()); err == nil {
		writeEvent(w, initial)
	}
	flusher.Flush()

	keepalive := time.NewTicker(KeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			writeEvent(w, event)
			flusher.Flush()
		case <-r.Context().Done():
			logger.Debug("SSE client disconnected")
			return
		case <-keepalive.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event pubsub.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Warn("Failed to encode SSE event", "type", event.Type, "error", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}

func (h *APIHandlers) runChecks(ctx context.Context) (map[string]any, bool) {
	results := make(map[string]any, len(h.checks))
	healthy := true
	for _, c := range h.checks {
		if err := c.fn(ctx); err != nil {
			healthy = false
			results[c.name] = map[string]any{"status": "unhealthy", "error": err.Error()}
			continue
		}
		results[c.name] = map[string]any{"status": "healthy"}
	}
	return results, healthy
}

// Health reports every registered dependency.
func (h *APIHandlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks, healthy := h.runChecks(ctx)
	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}

// Liveness returns 200 while the process runs; dependencies are not checked.
func (h *APIHandlers) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// Readiness returns 503 while any registered dependency is failing.
func (h *APIHandlers) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, healthy := h.runChecks(ctx); !healthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "not_ready",
			"timestamp": time.Now().Unix(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}
