// Package search implements debounced live keyword search. Input is
// collected until it has been quiet for the debounce delay, then one backend
// search is issued. Each input change takes a new token; a response is only
// rendered if its token is still current when it arrives.
package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/npratt/deskboard/internal/helpdesk"
	"github.com/npratt/deskboard/internal/timing"
	"github.com/npratt/deskboard/internal/view"
)

// Defaults.
const (
	DefaultDebounce  = 300 * time.Millisecond
	DefaultMinLength = 2
	DefaultTimeout   = 15 * time.Second
)

// ErrStale marks a response that was superseded by newer input. It is
// logged and never shown.
var ErrStale = errors.New("stale search response")

// State is the search widget state.
type State int

const (
	Idle State = iota
	Pending
	Displayed
	Empty
	Cleared
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Displayed:
		return "displayed"
	case Empty:
		return "empty"
	case Cleared:
		return "cleared"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Token identifies the most recently issued search input.
type Token uint64

// Next returns the following token.
func (t Token) Next() Token {
	return t + 1
}

// Results is the content written to the results mount.
type Results struct {
	Query string
	State State
	Items []helpdesk.TicketSummary
	Err   string
}

// Searcher runs debounced searches and writes results to one mount.
type Searcher struct {
	client    helpdesk.TicketSearcher
	binder    view.Binder
	mountID   string
	logger    *slog.Logger
	delay     time.Duration
	minLength int
	timeout   time.Duration
	afterFunc timing.AfterFunc
	ctx       context.Context

	mu       sync.Mutex
	timer    timing.Timer
	token    Token
	query    string
	accepted string
	state    State
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithDebounce sets the quiet period before a search is issued.
func WithDebounce(d time.Duration) Option {
	return func(s *Searcher) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithMinLength sets the shortest trimmed query that triggers a request.
func WithMinLength(n int) Option {
	return func(s *Searcher) {
		if n >= 0 {
			s.minLength = n
		}
	}
}

// WithTimeout bounds each backend search.
func WithTimeout(d time.Duration) Option {
	return func(s *Searcher) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithAfterFunc replaces the timer source.
func WithAfterFunc(fn timing.AfterFunc) Option {
	return func(s *Searcher) {
		s.afterFunc = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithContext sets the parent context of backend searches. Once it is
// cancelled, searches in flight are aborted and nothing more is rendered.
func WithContext(ctx context.Context) Option {
	return func(s *Searcher) {
		if ctx != nil {
			s.ctx = ctx
		}
	}
}

// New creates a Searcher that renders into the mount with id mountID.
func New(client helpdesk.TicketSearcher, binder view.Binder, mountID string, opts ...Option) *Searcher {
	s := &Searcher{
		client:    client,
		binder:    binder,
		mountID:   mountID,
		logger:    slog.Default(),
		delay:     DefaultDebounce,
		minLength: DefaultMinLength,
		timeout:   DefaultTimeout,
		afterFunc: timing.Real,
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Input handles a change of the search text. Any pending search is
// cancelled. Queries shorter than the minimum length clear the results
// without a request; others are issued once input has been quiet for the
// debounce delay.
func (s *Searcher) Input(text string) {
	query := strings.TrimSpace(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.token = s.token.Next()
	s.query = query

	if len([]rune(query)) < s.minLength {
		s.accepted = ""
		s.state = Idle
		s.render(Results{Query: query, State: Cleared})
		return
	}

	s.state = Pending
	s.schedule(s.token, query, s.delay)
}

// Rerun re-issues the last accepted query immediately, for example after the
// data behind it changed. It does nothing when no query is active.
func (s *Searcher) Rerun() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len([]rune(s.query)) < s.minLength {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.token = s.token.Next()
	s.state = Pending
	s.schedule(s.token, s.query, 0)
}

// schedule arms the timer for token. Caller holds s.mu.
func (s *Searcher) schedule(token Token, query string, delay time.Duration) {
	s.timer = s.afterFunc(delay, func() {
		if err := s.execute(token, query); errors.Is(err, ErrStale) {
			s.logger.Debug("dropping stale search response",
				"query", query,
				"token", uint64(token))
		}
	})
}

// execute performs the search for token and renders the outcome if token
// is still current. The backend call happens without s.mu held.
func (s *Searcher) execute(token Token, query string) error {
	s.mu.Lock()
	if token != s.token {
		s.mu.Unlock()
		return ErrStale
	}
	s.mu.Unlock()

	if err := s.ctx.Err(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	items, err := s.client.SearchTickets(ctx, query)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.token {
		return ErrStale
	}
	s.timer = nil
	if s.ctx.Err() != nil {
		return s.ctx.Err()
	}

	if err != nil {
		s.logger.Warn("search failed", "query", query, "error", err)
		s.state = Errored
		s.render(Results{Query: query, State: Errored, Err: helpdesk.Describe(err)})
		return err
	}

	s.accepted = query
	if len(items) == 0 {
		s.state = Empty
		s.render(Results{Query: query, State: Empty})
		return nil
	}

	s.state = Displayed
	s.render(Results{Query: query, State: Displayed, Items: items})
	return nil
}

// render writes r to the results mount. Caller holds s.mu.
func (s *Searcher) render(r Results) {
	mount, ok := s.binder.FindMount(s.mountID)
	if !ok {
		s.logger.Debug("search results mount missing", "mount", s.mountID)
		return
	}
	mount.Set(r)
}

// Query returns the current trimmed input.
func (s *Searcher) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Accepted returns the last query whose response was rendered.
func (s *Searcher) Accepted() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

// State returns the current widget state.
func (s *Searcher) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns the current token.
func (s *Searcher) Token() Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Results returns what is currently rendered in the results mount.
func (s *Searcher) Results() (Results, bool) {
	mount, ok := s.binder.FindMount(s.mountID)
	if !ok {
		return Results{}, false
	}
	r, ok := mount.Content().(Results)
	return r, ok
}
