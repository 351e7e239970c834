package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/samonide/epl-prediction/internal/logger"
	"github.com/samonide/epl-prediction/pkg/epl"
	"github.com/samonide/epl-prediction/pkg/model"
)

// Server exposes the prediction pipeline over HTTP. It holds the built
// dataset and the loaded bundle; both are read-only after construction so
// handlers can run concurrently without locking.
type Server struct {
	dataset *epl.Dataset
	bundle  *model.Bundle
	router  *mux.Router
	httpSrv *http.Server
}

// New wires the routes over a built dataset and bundle
func New(dataset *epl.Dataset, bundle *model.Bundle, addr string) *Server {
	s := &Server{
		dataset: dataset,
		bundle:  bundle,
		router:  mux.NewRouter(),
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/teams", s.handleTeams).Methods(http.MethodGet)
	api.HandleFunc("/predictions", s.handlePredictions).Methods(http.MethodGet)
	api.HandleFunc("/predict", s.handlePredict).Methods(http.MethodGet)
	api.HandleFunc("/model", s.handleModel).Methods(http.MethodGet)

	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// ListenAndServe blocks until the server stops
func (s *Server) ListenAndServe() error {
	logger.Highlight("Serving predictions on", s.httpSrv.Addr)
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"matches": len(s.dataset.Matches),
		"teams":   len(s.dataset.Teams),
	})
}

func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.dataset.Teams))
	for _, t := range s.dataset.Teams {
		names = append(names, t.Name)
	}
	writeJSON(w, http.StatusOK, map[string]any{"teams": names})
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"id":         s.bundle.ID,
		"modelType":  s.bundle.ModelType,
		"accuracy":   s.bundle.Accuracy,
		"logLoss":    s.bundle.LogLoss,
		"valSamples": s.bundle.ValSamples,
		"trainedAt":  s.bundle.TrainedAt,
		"columns":    s.bundle.FeatureColumns,
		"classes":    s.bundle.Classes,
	})
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	top := epl.Config.DefaultTopFixtures
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("top must be a positive integer, got %q", raw))
			return
		}
		top = n
	}

	predictions, err := epl.PredictFixtures(s.dataset, s.bundle, top, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"predictions": predictions})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	home := r.URL.Query().Get("home")
	away := r.URL.Query().Get("away")
	if home == "" || away == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("both home and away query parameters are required"))
		return
	}

	prediction, err := epl.PredictSingleMatch(s.dataset, s.bundle, home, away, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

// writeDomainError maps pipeline errors onto HTTP statuses
func writeDomainError(w http.ResponseWriter, err error) {
	var unresolvable *epl.UnresolvableEntityError
	if errors.As(err, &unresolvable) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var insufficient *epl.DataInsufficiencyError
	if errors.As(err, &insufficient) {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	logger.Error("Request failed", err)
	writeError(w, http.StatusInternalServerError, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", err)
	}
}
