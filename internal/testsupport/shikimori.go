package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"animecat/internal/shikimori"
)

// ShikimoriServer is a fake Shikimori search API that records queries.
type ShikimoriServer struct {
	*httptest.Server

	mu      sync.Mutex
	results map[string][]shikimori.Candidate
	queries []string
}

// NewShikimoriServer starts a fake search API answering from results. Unknown
// queries return an empty list. The server is closed on test cleanup.
func NewShikimoriServer(t testing.TB, results map[string][]shikimori.Candidate) *ShikimoriServer {
	t.Helper()

	s := &ShikimoriServer{results: results}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/animes" {
			http.NotFound(w, r)
			return
		}
		query := r.URL.Query().Get("search")
		s.mu.Lock()
		s.queries = append(s.queries, query)
		found := s.results[query]
		s.mu.Unlock()
		if found == nil {
			found = []shikimori.Candidate{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(found)
	}))
	t.Cleanup(s.Server.Close)
	return s
}

// Queries returns the search strings received so far.
func (s *ShikimoriServer) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}
