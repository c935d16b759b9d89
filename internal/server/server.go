// Package server exposes the outcome resolver over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ipl-win-predictor/internal/match"
	"ipl-win-predictor/internal/ml"
	"ipl-win-predictor/internal/resolver"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const requestTimeout = 5 * time.Second

// Resolver is the part of resolver.Resolver the server needs.
type Resolver interface {
	Resolve(ctx context.Context, s match.State) (resolver.Outcome, error)
}

// Server provides the HTTP API for win probability requests.
type Server struct {
	resolver Resolver
	gatherer prometheus.Gatherer
	info     map[string]string
	server   *http.Server
}

// PredictionResponse is the body returned by POST /predict.
type PredictionResponse struct {
	RequestID   string           `json:"request_id"`
	BattingTeam match.Team       `json:"batting_team"`
	BowlingTeam match.Team       `json:"bowling_team"`
	WinPercent  int              `json:"win_percent"`
	LossPercent int              `json:"loss_percent"`
	Outcome     resolver.Outcome `json:"outcome"`
	Latency     float64          `json:"latency_ms"`
	Timestamp   time.Time        `json:"timestamp"`
}

// ErrorResponse is the body returned for rejected requests.
type ErrorResponse struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
}

// DomainResponse lists the values a client may select from.
type DomainResponse struct {
	Teams  []match.Team  `json:"teams"`
	Cities []match.City  `json:"cities"`
	Overs  []match.Overs `json:"overs"`
}

// New creates a server listening on port. info is reported by /health.
func New(r Resolver, gatherer prometheus.Gatherer, port int, info map[string]string) *Server {
	s := &Server{
		resolver: r,
		gatherer: gatherer,
		info:     info,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/predict", s.handlePredict)
	mux.HandleFunc("/domain", s.handleDomain)
	mux.HandleFunc("/health", s.handleHealth)
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// Start begins serving HTTP requests
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting prediction server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{RequestID: requestID, Error: "method not allowed"})
		return
	}

	start := time.Now()

	var state match.State
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&state); err != nil {
		resp := ErrorResponse{RequestID: requestID, Error: fmt.Sprintf("invalid request: %v", err)}
		if errors.Is(err, match.ErrInvalidOversFormat) {
			resp.Field = "overs"
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	if err := state.Validate(); err != nil {
		var fe *match.FieldError
		resp := ErrorResponse{RequestID: requestID, Error: err.Error()}
		if errors.As(err, &fe) {
			resp.Field = fe.Field
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	outcome, err := s.resolver.Resolve(ctx, state)
	if err != nil {
		status := statusFor(err)
		log.Error().Err(err).Str("request_id", requestID).Int("status", status).Msg("prediction failed")
		resp := ErrorResponse{RequestID: requestID, Error: err.Error()}
		if errors.Is(err, match.ErrInvalidOversFormat) {
			resp.Field = "overs"
		}
		writeJSON(w, status, resp)
		return
	}

	win, loss := outcome.Percentages()
	resp := PredictionResponse{
		RequestID:   requestID,
		BattingTeam: state.BattingTeam,
		BowlingTeam: state.BowlingTeam,
		WinPercent:  win,
		LossPercent: loss,
		Outcome:     outcome,
		Latency:     float64(time.Since(start).Microseconds()) / 1000,
		Timestamp:   time.Now().UTC(),
	}

	log.Info().
		Str("request_id", requestID).
		Str("tag", string(outcome.Tag)).
		Float64("win", outcome.Win).
		Msg("prediction served")

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDomain(w http.ResponseWriter, r *http.Request) {
	resp := DomainResponse{
		Teams:  match.Teams(),
		Cities: match.Cities(),
		Overs:  match.ValidOvers(),
	}
	if batting := r.URL.Query().Get("batting"); batting != "" {
		resp.Teams = match.Opponents(match.Team(batting))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"healthy": true}
	for k, v := range s.info {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, match.ErrInvalidOversFormat):
		return http.StatusBadRequest
	case errors.Is(err, ml.ErrInferenceFailed):
		return http.StatusBadGateway
	case errors.Is(err, ml.ErrClassifierUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}
