package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ps-vitor/daft-analyzer/backend/internal/api/models"
	"github.com/ps-vitor/daft-analyzer/backend/internal/scraping/collectors/daft"
)

const maxBodyBytes = 1 << 20

func (h *APIHandler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", models.ErrInvalidRequest, err))
		return
	}

	filter, err := req.ToFilter()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	h.logger.Infof("[api] Received analysis request for %q", filter.Location)

	report, err := h.analyzer.Analyze(r.Context(), filter)
	if err != nil {
		h.logger.Errorf("[api] Analysis failed: %v", err)
		h.writeError(w, http.StatusBadGateway, err)
		return
	}
	if req.Email != "" {
		report.Message += " Email notifications are not enabled."
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *APIHandler) handleSearchURL(w http.ResponseWriter, r *http.Request) {
	filter, err := models.FilterFromQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"search_url": h.analyzer.SearchURL(filter)})
}

func (h *APIHandler) handleListing(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("url"))
	u, err := url.Parse(raw)
	if raw == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		h.writeError(w, http.StatusBadRequest, errors.New("url must be an absolute http(s) listing URL"))
		return
	}

	listing, err := h.analyzer.Extract(r.Context(), u.String())
	if errors.Is(err, daft.ErrForeignURL) {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err)
		return
	}
	h.writeJSON(w, http.StatusOK, listing)
}
