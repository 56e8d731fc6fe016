package http

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/influxdata/stopwatch"
	"github.com/influxdata/stopwatch/kit/platform/errors"
	kithttp "github.com/influxdata/stopwatch/kit/transport/http"
	"go.uber.org/zap"
)

// StopwatchHandler serves the button and state routes of one stopwatch.
type StopwatchHandler struct {
	chi.Router

	log *zap.Logger
	svc stopwatch.Service
	api *kithttp.API
}

// NewStopwatchHandler returns a handler for svc. Routes are relative to
// where it is mounted.
func NewStopwatchHandler(log *zap.Logger, svc stopwatch.Service) *StopwatchHandler {
	h := &StopwatchHandler{
		log: log,
		svc: svc,
		api: kithttp.NewAPI(kithttp.WithLog(log)),
	}

	r := chi.NewRouter()
	r.Post("/buttons", h.handlePostButtons)
	r.Post("/buttons/{button}", h.handlePostButton)
	r.Get("/state", h.handleGetState)
	h.Router = r
	return h
}

type buttonsRequest struct {
	Buttons []string `json:"buttons"`
}

type buttonsResponse struct {
	State    stopwatch.RunState       `json:"state"`
	Elapsed  stopwatch.ElapsedSeconds `json:"elapsed"`
	Commands []stopwatch.Command      `json:"commands"`
}

type stateResponse struct {
	State       stopwatch.RunState        `json:"state"`
	Elapsed     stopwatch.ElapsedSeconds  `json:"elapsed"`
	PauseOffset stopwatch.ElapsedSeconds  `json:"pauseOffset"`
	Angles      stopwatch.ClockHandAngles `json:"angles"`
}

// handlePostButton is the HTTP handler for the POST /api/v1/buttons/:button route.
func (h *StopwatchHandler) handlePostButton(w http.ResponseWriter, r *http.Request) {
	e, err := stopwatch.ParseEvent(chi.URLParam(r, "button"))
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.press(w, r, e)
}

// handlePostButtons is the HTTP handler for the POST /api/v1/buttons route.
// All buttons in the body are pressed together.
func (h *StopwatchHandler) handlePostButtons(w http.ResponseWriter, r *http.Request) {
	var req buttonsRequest
	if err := h.api.DecodeJSON(r.Body, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}
	if len(req.Buttons) == 0 {
		h.api.Err(w, r, &errors.Error{
			Code: errors.EInvalid,
			Op:   "http/handlePostButtons",
			Msg:  "at least one button is required",
		})
		return
	}

	events := make([]stopwatch.Event, 0, len(req.Buttons))
	for _, b := range req.Buttons {
		e, err := stopwatch.ParseEvent(b)
		if err != nil {
			h.api.Err(w, r, err)
			return
		}
		events = append(events, e)
	}
	h.press(w, r, events...)
}

func (h *StopwatchHandler) press(w http.ResponseWriter, r *http.Request, events ...stopwatch.Event) {
	ctx := r.Context()
	applied, err := h.svc.Dispatch(ctx, events...)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	s, err := h.svc.Snapshot(ctx)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if applied == nil {
		applied = []stopwatch.Command{}
	}
	h.log.Debug("Buttons pressed", zap.Int("events", len(events)), zap.Int("applied", len(applied)))
	h.api.Respond(w, r, http.StatusAccepted, buttonsResponse{
		State:    s.State,
		Elapsed:  s.Elapsed,
		Commands: applied,
	})
}

// handleGetState is the HTTP handler for the GET /api/v1/state route.
func (h *StopwatchHandler) handleGetState(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Snapshot(r.Context())
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, stateResponse{
		State:       s.State,
		Elapsed:     s.Elapsed,
		PauseOffset: s.PauseOffset,
		Angles:      s.Angles,
	})
}
