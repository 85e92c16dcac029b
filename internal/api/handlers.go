package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"asclepius/internal/domain/patient"
	"asclepius/internal/metrics"
	"asclepius/internal/services/dashboard"
	"asclepius/internal/services/pipeline"
	"asclepius/pkg/errors"
	"asclepius/pkg/logger"
)

const defaultStreamHeartbeat = 15 * time.Second

// Handler exposes the triage pipeline and dashboard over HTTP
type Handler struct {
	pipeline  *pipeline.Service
	dashboard *dashboard.Service
	heartbeat time.Duration
	log       *logger.Logger
}

// NewHandler creates the HTTP handler. heartbeat is the SSE keepalive
// interval; zero selects the default.
func NewHandler(pipelineSvc *pipeline.Service, dashboardSvc *dashboard.Service, heartbeat time.Duration) *Handler {
	if heartbeat <= 0 {
		heartbeat = defaultStreamHeartbeat
	}
	return &Handler{
		pipeline:  pipelineSvc,
		dashboard: dashboardSvc,
		heartbeat: heartbeat,
		log:       logger.Get().With("component", "http"),
	}
}

// RegisterRoutes mounts all triage and dashboard routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/triage", h.HandleTriage)
	r.Post("/triage/stream", h.HandleTriageStream)
	r.Get("/verdicts/{patientID}", h.HandleGetVerdict)
	r.Get("/dashboard/stats", h.HandleStats)
	r.Get("/dashboard/recent", h.HandleRecent)
	r.Get("/patients/{patientID}/history", h.HandlePatientHistory)
}

// HandleTriage runs the full pipeline synchronously and returns the verdict
func (h *Handler) HandleTriage(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeIntake(w, r)
	if !ok {
		return
	}

	v, err := h.pipeline.Triage(r.Context(), in, nil)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, v)
}

// HandleTriageStream runs the pipeline and streams progress as SSE.
// The verdict is the last data event, followed by a [DONE] sentinel.
func (h *Handler) HandleTriageStream(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeIntake(w, r)
	if !ok {
		return
	}

	flusher, okFlush := w.(http.Flusher)
	if !okFlush {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()

	events := make(chan pipeline.StreamEvent, 16)
	go func() {
		defer close(events)
		if _, err := h.pipeline.Triage(r.Context(), in, func(e pipeline.StreamEvent) {
			events <- e
		}); err != nil {
			// The error event was already emitted by the pipeline
			h.log.Warnw("Streaming triage failed", "patient_id", in.ID, "error", err)
		}
	}()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-events:
			if !ok {
				fmt.Fprintf(w, "data: [DONE]\n\n")
				flusher.Flush()
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				h.log.Errorw("Failed to marshal stream event", "type", e.Type, "error", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()

		case <-ticker.C:
			// SSE comment frame keeps the connection alive through a
			// long council phase
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

// HandleGetVerdict returns the latest verdict for a patient
func (h *Handler) HandleGetVerdict(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	v, err := h.pipeline.LatestVerdict(r.Context(), patientID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, v)
}

// HandleStats returns dashboard aggregates
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}

// HandleRecent returns the newest verdicts
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := h.dashboard.Recent(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, records)
}

// HandlePatientHistory returns the stored triage record for a patient
func (h *Handler) HandlePatientHistory(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	rec, err := h.dashboard.Patient(r.Context(), patientID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) decodeIntake(w http.ResponseWriter, r *http.Request) (*patient.Intake, bool) {
	var in patient.Intake
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return nil, false
	}

	in.Normalize()
	if err := in.Validate(); err != nil {
		metrics.TriageRequests.WithLabelValues("validation_error").Inc()
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, false
	}

	return &in, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	switch {
	case errors.Is(err, errors.ErrNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, errors.ErrInvalidInput):
		statusCode = http.StatusBadRequest
	case errors.Is(err, errors.ErrTimeout):
		statusCode = http.StatusGatewayTimeout
	case errors.Is(err, errors.ErrUnavailable), errors.Is(err, errors.ErrClassifierUnavailable):
		statusCode = http.StatusServiceUnavailable
	}

	h.writeJSON(w, statusCode, map[string]string{"error": err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorw("Failed to encode response", "error", err)
	}
}
