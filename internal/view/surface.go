// Package view models the dashboard surface as a set of named mount points.
// Core components locate mounts through a Binder and write their content
// into them; the terminal UI reads the same mounts when it renders.
package view

import (
	"sort"
	"sync"
)

// Well-known mount point ids.
const (
	StatusChart        = "statusChart"
	AdminStatusChart   = "adminStatusChart"
	PriorityChart      = "priorityChart"
	AdminPriorityChart = "adminPriorityChart"
	SearchResults      = "searchResults"
	ToastContainer     = "toastContainer"
)

// Binder locates mount points on a rendering surface.
type Binder interface {
	FindMount(id string) (*Mount, bool)
}

// Mount is a single location on the surface holding one content value.
type Mount struct {
	id       string
	mu       sync.RWMutex
	content  any
	version  uint64
	onChange func(id string)
}

// ID returns the mount point id.
func (m *Mount) ID() string {
	return m.id
}

// Set replaces the content of the mount and signals the surface.
func (m *Mount) Set(content any) {
	m.mu.Lock()
	m.content = content
	m.version++
	m.mu.Unlock()

	if m.onChange != nil {
		m.onChange(m.id)
	}
}

// Touch signals that content held by reference changed in place.
func (m *Mount) Touch() {
	m.mu.Lock()
	m.version++
	m.mu.Unlock()

	if m.onChange != nil {
		m.onChange(m.id)
	}
}

// Content returns the current content, or nil if nothing was set.
func (m *Mount) Content() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.content
}

// Version counts content changes. It starts at zero.
func (m *Mount) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// Surface is an in-memory Binder. Mounts are registered by the layout that
// owns the surface (the TUI, or a test).
type Surface struct {
	mu      sync.RWMutex
	mounts  map[string]*Mount
	changed chan struct{}
}

// NewSurface creates a Surface with the given mounts registered.
func NewSurface(ids ...string) *Surface {
	s := &Surface{
		mounts:  make(map[string]*Mount),
		changed: make(chan struct{}, 1),
	}
	for _, id := range ids {
		s.Register(id)
	}
	return s
}

// Register adds a mount with the given id, replacing any previous mount
// under that id. The replacement is a fresh mount with no content.
func (s *Surface) Register(id string) *Mount {
	m := &Mount{id: id, onChange: s.signal}

	s.mu.Lock()
	s.mounts[id] = m
	s.mu.Unlock()

	s.signal(id)
	return m
}

// Ensure returns the mount with the given id, registering it if absent.
func (s *Surface) Ensure(id string) *Mount {
	s.mu.Lock()
	m, ok := s.mounts[id]
	if !ok {
		m = &Mount{id: id, onChange: s.signal}
		s.mounts[id] = m
	}
	s.mu.Unlock()

	if !ok {
		s.signal(id)
	}
	return m
}

// Remove deletes the mount with the given id.
func (s *Surface) Remove(id string) {
	s.mu.Lock()
	_, ok := s.mounts[id]
	delete(s.mounts, id)
	s.mu.Unlock()

	if ok {
		s.signal(id)
	}
}

// FindMount implements Binder.
func (s *Surface) FindMount(id string) (*Mount, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mounts[id]
	return m, ok
}

// IDs returns the registered mount ids in sorted order.
func (s *Surface) IDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.mounts))
	for id := range s.mounts {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Changes delivers a signal after one or more mounts changed. Signals are
// coalesced: a reader that falls behind sees a single pending signal.
func (s *Surface) Changes() <-chan struct{} {
	return s.changed
}

func (s *Surface) signal(string) {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// Verify Surface implements Binder.
var _ Binder = (*Surface)(nil)
