package charts

import (
	"sync"
	"time"

	"github.com/npratt/deskboard/internal/view"
)

// Handle owns the live chart bound to one mount point. The pipeline creates
// it on the first successful render and replaces its data in place on later
// refreshes, for as long as the mount persists.
type Handle struct {
	mu        sync.RWMutex
	slot      Slot
	mount     *view.Mount
	series    Series
	renders   int
	updatedAt time.Time
}

// newHandle creates a handle and binds it to mount.
func newHandle(slot Slot, mount *view.Mount, s Series, now time.Time) *Handle {
	h := &Handle{
		slot:      slot,
		mount:     mount,
		series:    s.clone(),
		renders:   1,
		updatedAt: now,
	}
	mount.Set(h)
	return h
}

// Update replaces the data in place. The new series is visible to readers
// atomically.
func (h *Handle) Update(s Series, now time.Time) {
	h.mu.Lock()
	h.series = s.clone()
	h.renders++
	h.updatedAt = now
	h.mu.Unlock()

	h.mount.Touch()
}

// MountID returns the id of the bound mount.
func (h *Handle) MountID() string {
	return h.mount.ID()
}

// Slot returns the chart slot this handle draws.
func (h *Handle) Slot() Slot {
	return h.slot
}

// Kind returns how the chart is drawn.
func (h *Handle) Kind() Kind {
	return h.slot.Kind
}

// Series returns a copy of the current data.
func (h *Handle) Series() Series {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.series.clone()
}

// Renders counts how many times data was applied, including creation.
func (h *Handle) Renders() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.renders
}

// UpdatedAt returns when data was last applied.
func (h *Handle) UpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.updatedAt
}
