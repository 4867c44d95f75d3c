package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"docsift/internal/index"
)

// SearchRequest is the body of POST /api/search. SelectedText is the
// text the user highlighted in their reader; it becomes the query.
type SearchRequest struct {
	SelectedText string   `json:"selected_text"`
	TopK         int      `json:"top_k,omitempty"`
	MinScore     *float64 `json:"min_score,omitempty"`
}

// SearchResponse groups matches by document, best match first.
type SearchResponse struct {
	Query   string            `json:"query"`
	Results []index.DocResult `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	query := strings.TrimSpace(req.SelectedText)
	if query == "" {
		jsonError(w, "selected_text is required", http.StatusBadRequest)
		return
	}

	topK := req.TopK
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	minScore := s.cfg.MinScore
	if req.MinScore != nil {
		minScore = *req.MinScore
	}
	if minScore < 0 || minScore > 1 {
		jsonError(w, "min_score must be between 0 and 1", http.StatusBadRequest)
		return
	}

	results := s.index.Search(query, topK, minScore)
	if results == nil {
		results = []index.DocResult{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SearchResponse{Query: query, Results: results})
}

// handleListDocuments lists the indexed corpus.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"documents": s.index.Documents()})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
