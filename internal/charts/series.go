// Package charts keeps the dashboard's statistics charts consistent with the
// backend: it fetches the stats snapshot, projects it into per-chart series
// and renders or updates one chart handle per mount point.
package charts

import (
	"fmt"

	"github.com/npratt/deskboard/internal/helpdesk"
	"github.com/npratt/deskboard/internal/view"
)

// Kind selects how a series is drawn.
type Kind int

const (
	// Doughnut draws each value as a share of the whole.
	Doughnut Kind = iota
	// Bar draws each value as a vertical bar.
	Bar
)

func (k Kind) String() string {
	switch k {
	case Doughnut:
		return "doughnut"
	case Bar:
		return "bar"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Series is the data for one chart: parallel labels, values and colors.
type Series struct {
	Labels []string
	Values []float64
	Colors []string
}

// Valid reports whether the three sequences have equal length.
func (s Series) Valid() bool {
	return len(s.Labels) == len(s.Values) && len(s.Values) == len(s.Colors)
}

// Total returns the sum of all values.
func (s Series) Total() float64 {
	var sum float64
	for _, v := range s.Values {
		sum += v
	}
	return sum
}

// Equal reports whether two series hold the same data.
func (s Series) Equal(o Series) bool {
	if len(s.Labels) != len(o.Labels) || len(s.Values) != len(o.Values) || len(s.Colors) != len(o.Colors) {
		return false
	}
	for i := range s.Labels {
		if s.Labels[i] != o.Labels[i] {
			return false
		}
	}
	for i := range s.Values {
		if s.Values[i] != o.Values[i] {
			return false
		}
	}
	for i := range s.Colors {
		if s.Colors[i] != o.Colors[i] {
			return false
		}
	}
	return true
}

func (s Series) clone() Series {
	return Series{
		Labels: append([]string(nil), s.Labels...),
		Values: append([]float64(nil), s.Values...),
		Colors: append([]string(nil), s.Colors...),
	}
}

// Palette colors, matching the web dashboard.
const (
	ColorOpen       = "#ffc107"
	ColorInProgress = "#17a2b8"
	ColorResolved   = "#28a745"
	ColorClosed     = "#6c757d"
	ColorUrgent     = "#dc3545"
	ColorHigh       = "#fd7e14"
)

// Slot is one logical chart and the mount points that display it. The
// end-user and admin variants share the same data.
type Slot struct {
	Name     string
	Title    string
	Kind     Kind
	MountIDs []string
}

// Chart slots.
var (
	StatusSlot = Slot{
		Name:     "status",
		Title:    "Tickets by Status",
		Kind:     Doughnut,
		MountIDs: []string{view.StatusChart, view.AdminStatusChart},
	}
	PrioritySlot = Slot{
		Name:     "priority",
		Title:    "High Priority Tickets",
		Kind:     Bar,
		MountIDs: []string{view.PriorityChart, view.AdminPriorityChart},
	}
)

// Slots lists every chart slot in render order.
var Slots = []Slot{StatusSlot, PrioritySlot}

// SlotForMount returns the slot that owns a mount id.
func SlotForMount(id string) (Slot, bool) {
	for _, slot := range Slots {
		for _, mid := range slot.MountIDs {
			if mid == id {
				return slot, true
			}
		}
	}
	return Slot{}, false
}

// Project maps a stats snapshot onto the status and priority series in
// their fixed category order.
func Project(stats helpdesk.Stats) (status, priority Series) {
	status = Series{
		Labels: []string{"Open", "In Progress", "Resolved", "Closed"},
		Values: []float64{
			float64(stats.OpenTickets),
			float64(stats.InProgressTickets),
			float64(stats.ResolvedTickets),
			float64(stats.ClosedTickets),
		},
		Colors: []string{ColorOpen, ColorInProgress, ColorResolved, ColorClosed},
	}
	priority = Series{
		Labels: []string{"Urgent", "High"},
		Values: []float64{
			float64(stats.UrgentTickets),
			float64(stats.HighPriorityTickets),
		},
		Colors: []string{ColorUrgent, ColorHigh},
	}
	return status, priority
}

// seriesFor returns the projection for one slot.
func seriesFor(slot Slot, stats helpdesk.Stats) Series {
	status, priority := Project(stats)
	if slot.Name == PrioritySlot.Name {
		return priority
	}
	return status
}
