// Package api provides the HTTP handlers for the search insight service.
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"search-insight-service/internal/insight"
	"search-insight-service/internal/orchestrator"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SearchRequestPayload is the body of POST /search and /search/enhanced.
type SearchRequestPayload struct {
	Query          string   `json:"query"`
	RequesterID    string   `json:"requester_id"`
	SearchType     string   `json:"search_type"`
	Depth          string   `json:"depth,omitempty"`
	MaxResults     int      `json:"max_results,omitempty"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
	Language       string   `json:"language,omitempty"`
	Days           int      `json:"days,omitempty"`
}

// SearchResponsePayload is the body of a successful /search response.
type SearchResponsePayload struct {
	Insight insight.SearchInsight `json:"insight"`
	Answer  string                `json:"answer"`
}

// SearchHandler holds dependencies for the search endpoints.
type SearchHandler struct {
	Orchestrator *orchestrator.Orchestrator
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(orch *orchestrator.Orchestrator) *SearchHandler {
	return &SearchHandler{Orchestrator: orch}
}

// HandleSearch serves POST and GET /search with the legacy-shaped response.
func (sh *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	payload, ok := sh.decodeRequest(w, r)
	if !ok {
		return
	}

	res, err := sh.Orchestrator.EnhancedSearch(r.Context(), payload.Query, payload.RequesterID, payload.SearchType, payload.params())
	if err != nil {
		sh.respondWithSearchError(w, err)
		return
	}

	answer := res.Insight.DirectAnswer
	if answer == "" {
		answer = res.Insight.Summary
	}
	sh.respondJSON(w, http.StatusOK, SearchResponsePayload{
		Insight: res.Insight,
		Answer:  answer,
	})
}

// HandleEnhancedSearch serves POST and GET /search/enhanced with the full
// payload: insight, summary, keywords, and supporting raw results.
func (sh *SearchHandler) HandleEnhancedSearch(w http.ResponseWriter, r *http.Request) {
	payload, ok := sh.decodeRequest(w, r)
	if !ok {
		return
	}

	res, err := sh.Orchestrator.EnhancedSearch(r.Context(), payload.Query, payload.RequesterID, payload.SearchType, payload.params())
	if err != nil {
		sh.respondWithSearchError(w, err)
		return
	}

	sh.respondJSON(w, http.StatusOK, res)
}

// decodeRequest accepts a JSON body on POST or query parameters on GET.
func (sh *SearchHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (*SearchRequestPayload, bool) {
	var payload SearchRequestPayload

	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			sh.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload: %v", err))
			return nil, false
		}
		defer func() { _ = r.Body.Close() }()
	case http.MethodGet:
		q := r.URL.Query()
		payload.Query = q.Get("query")
		payload.RequesterID = q.Get("requester_id")
		payload.SearchType = q.Get("search_type")
		payload.Depth = q.Get("depth")
		payload.Language = q.Get("language")
		if raw := q.Get("max_results"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				payload.MaxResults = n
			}
		}
		if raw := q.Get("days"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				payload.Days = n
			}
		}
		if raw := q.Get("include_domains"); raw != "" {
			payload.IncludeDomains = strings.Split(raw, ",")
		}
		if raw := q.Get("exclude_domains"); raw != "" {
			payload.ExcludeDomains = strings.Split(raw, ",")
		}
	default:
		sh.respondWithError(w, http.StatusMethodNotAllowed, "Only GET and POST methods are allowed")
		return nil, false
	}

	if strings.TrimSpace(payload.Query) == "" {
		sh.respondWithError(w, http.StatusBadRequest, "Query parameter is required")
		return nil, false
	}
	return &payload, true
}

func (p *SearchRequestPayload) params() insight.SearchParams {
	params := insight.SearchParams{
		Depth:          insight.Depth(p.Depth),
		MaxResults:     p.MaxResults,
		IncludeDomains: p.IncludeDomains,
		ExcludeDomains: p.ExcludeDomains,
		Language:       p.Language,
		Days:           p.Days,
	}
	return params.WithDefaults()
}

// respondWithSearchError maps orchestrator errors onto HTTP statuses. Only
// validation errors surface as client errors; anything else reaching this
// point is unexpected.
func (sh *SearchHandler) respondWithSearchError(w http.ResponseWriter, err error) {
	if errors.Is(err, insight.ErrValidation) {
		sh.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Error("Search failed unexpectedly", "error", err)
	sh.respondWithError(w, http.StatusInternalServerError, "search failed")
}

func (sh *SearchHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	sh.respondJSON(w, code, map[string]string{"error": message})
}

func (sh *SearchHandler) respondJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}
