package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
)

// BackendCall records one request received by FakeBackend.
type BackendCall struct {
	Method string
	Path   string
	Query  string
}

// FakeBackend is an httptest server speaking the helpdesk REST API with
// canned JSON bodies. Status codes and bodies can be changed between
// requests.
type FakeBackend struct {
	*httptest.Server

	mu           sync.Mutex
	StatsBody    string
	StatsStatus  int
	SearchBodies map[string]string
	SearchStatus int
	MutateBody   string
	MutateStatus int
	Calls        []BackendCall
}

// NewFakeBackend starts a FakeBackend. It is closed when the test ends.
func NewFakeBackend(t interface{ Cleanup(func()) }) *FakeBackend {
	b := &FakeBackend{
		StatsBody:    SampleStatsJSON,
		StatsStatus:  http.StatusOK,
		SearchBodies: make(map[string]string),
		SearchStatus: http.StatusOK,
		MutateBody:   MutationSuccessJSON,
		MutateStatus: http.StatusOK,
	}

	r := chi.NewRouter()
	r.Use(b.record)
	r.Get("/api/stats", b.handleStats)
	r.Get("/api/tickets/search", b.handleSearch)
	r.Post("/api/tickets/{id}/status", b.handleMutate)
	r.Post("/api/tickets/{id}/assign", b.handleMutate)

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

func (b *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.Calls = append(b.Calls, BackendCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) handleStats(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	status, body := b.StatsStatus, b.StatsBody
	b.mu.Unlock()
	writeJSON(w, status, body)
}

func (b *FakeBackend) handleSearch(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	status := b.SearchStatus
	body, ok := b.SearchBodies[r.URL.Query().Get("keyword")]
	b.mu.Unlock()
	if !ok {
		body = EmptySearchJSON
	}
	writeJSON(w, status, body)
}

func (b *FakeBackend) handleMutate(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	status, body := b.MutateStatus, b.MutateBody
	b.mu.Unlock()
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// SetStats replaces the stats response.
func (b *FakeBackend) SetStats(status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.StatsStatus, b.StatsBody = status, body
}

// SetSearch configures the body returned for a keyword.
func (b *FakeBackend) SetSearch(keyword, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.SearchBodies[keyword] = body
}

// SetMutate replaces the status/assign response.
func (b *FakeBackend) SetMutate(status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.MutateStatus, b.MutateBody = status, body
}

// GetCalls returns a copy of the recorded requests.
func (b *FakeBackend) GetCalls() []BackendCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]BackendCall(nil), b.Calls...)
}

// CallCount counts recorded requests matching method and path.
func (b *FakeBackend) CallCount(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.Calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}
