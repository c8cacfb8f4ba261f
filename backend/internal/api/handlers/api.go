package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ps-vitor/daft-analyzer/backend/internal/api/models"
	"github.com/ps-vitor/daft-analyzer/backend/internal/domain"
	"github.com/ps-vitor/daft-analyzer/backend/internal/services"
	"github.com/ps-vitor/daft-analyzer/backend/pkg/logger"
)

// Analyzer is the part of services.AnalysisService the API exposes.
type Analyzer interface {
	Analyze(ctx context.Context, filter domain.SearchFilter) (*services.Report, error)
	Extract(ctx context.Context, pageURL string) (*domain.Listing, error)
	SearchURL(filter domain.SearchFilter) string
}

type APIHandler struct {
	analyzer Analyzer
	logger   *logger.Logger
}

func NewAPIHandler(analyzer Analyzer, log *logger.Logger) *APIHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &APIHandler{analyzer: analyzer, logger: log}
}

func (h *APIHandler) RegisterRoutes(r *mux.Router) {
	r.Use(h.logRequests)
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	// Routes stay on the root router: a subrouter combined with Use turns
	// method mismatches into 404s instead of 405s.
	r.HandleFunc("/api/analyze", h.handleAnalyze).Methods(http.MethodPost)
	r.HandleFunc("/api/search-url", h.handleSearchURL).Methods(http.MethodGet)
	r.HandleFunc("/api/listing", h.handleListing).Methods(http.MethodGet)
}

// NewRouter returns a router with every API route registered.
func NewRouter(h *APIHandler) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func (h *APIHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *APIHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Infof("[api] %s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Errorf("[api] Error encoding response: %v", err)
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, models.ErrorResponse{Error: err.Error()})
}
