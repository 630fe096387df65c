package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"syncplayer/internal/platform/metrics"
	"syncplayer/internal/playback"

	"github.com/go-chi/chi/v5"
)

// Handler exposes session HTTP endpoints using go-chi.
type Handler struct {
	svc     *Service
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a Handler that uses the given Service, Logger, and optional Metrics.
// Metrics may be nil to disable metric recording (e.g. in tests).
func NewHandler(svc *Service, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, log: log, metrics: m}
}

// Mount registers the session routes on r. eventMiddleware wraps only the
// high-frequency event ingest route.
func (h *Handler) Mount(r chi.Router, eventMiddleware ...func(http.Handler) http.Handler) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{session_id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.CloseSession)
			r.Put("/playlist", h.SetPlaylist)
			r.With(eventMiddleware...).Post("/events", h.PostEvent)
			r.Post("/commands", h.PostCommand)
		})
	})
}

type playlistRequest struct {
	Playlist   []playback.SourceName `json:"playlist"`
	Fullscreen bool                  `json:"fullscreen_supported"`
}

// CreateSession handles POST /sessions.
// Body: { "playlist": ["front", "side"], "fullscreen_supported": true }.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid session body", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	res, err := h.svc.Create(req.Playlist, req.Fullscreen)
	if errors.Is(err, ErrInvalidPlaylist) {
		h.log.Debug("invalid playlist", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err != nil {
		h.log.Error("create session failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if h.metrics != nil {
		h.metrics.IncSessionsCreated()
	}
	writeJSON(w, http.StatusCreated, res)
}

// GetSession handles GET /sessions/{session_id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := SessionID(chi.URLParam(r, "session_id"))

	snap, err := h.svc.Snapshot(id)
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// CloseSession handles DELETE /sessions/{session_id}.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := SessionID(chi.URLParam(r, "session_id"))

	if err := h.svc.Close(id); err != nil {
		h.writeError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetPlaylist handles PUT /sessions/{session_id}/playlist.
// Body: { "playlist": ["front", "side"] }.
func (h *Handler) SetPlaylist(w http.ResponseWriter, r *http.Request) {
	id := SessionID(chi.URLParam(r, "session_id"))

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid playlist body", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	res, err := h.svc.SetPlaylist(id, req.Playlist)
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PostEvent handles POST /sessions/{session_id}/events.
// Body: { "generation": 1, "source": "front", "type": "duration_change", "duration": 60 }.
func (h *Handler) PostEvent(w http.ResponseWriter, r *http.Request) {
	id := SessionID(chi.URLParam(r, "session_id"))

	var ev Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		h.log.Debug("invalid event body", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	res, err := h.svc.HandleEvent(id, ev)
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PostCommand handles POST /sessions/{session_id}/commands.
// Body: { "type": "drag_end", "client_x": 240, "bar": { "left": 40, "width": 800 } }.
func (h *Handler) PostCommand(w http.ResponseWriter, r *http.Request) {
	id := SessionID(chi.URLParam(r, "session_id"))

	var cmd CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		h.log.Debug("invalid command body", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	res, err := h.svc.HandleCommand(id, cmd)
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) writeError(w http.ResponseWriter, id SessionID, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, ErrUnknownEvent), errors.Is(err, ErrUnknownCommand), errors.Is(err, ErrInvalidPlaylist):
		h.log.Debug("request rejected",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
	default:
		h.log.Error("session operation failed",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
