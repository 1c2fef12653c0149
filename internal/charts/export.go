package charts

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/npratt/deskboard/internal/view"
)

// DefaultExportFilename is used when ExportFile is given no name.
const DefaultExportFilename = "chart.png"

// Size is the pixel size of an exported image.
type Size struct {
	Width  int
	Height int
}

// DefaultSize is the export size used when none is configured.
var DefaultSize = Size{Width: 640, Height: 480}

// MinSize is the smallest export size. go-chart's doughnut renderer never
// returns on smaller canvases.
var MinSize = Size{Width: 64, Height: 64}

// ErrNoData is returned when a doughnut chart has nothing to draw.
var ErrNoData = errors.New("chart has no data to export")

// ErrTooSmall is returned for sizes below MinSize.
var ErrTooSmall = errors.New("export size below minimum")

// HandleFor returns the chart handle rendered into the mount with the given
// id.
func HandleFor(binder view.Binder, mountID string) (*Handle, error) {
	mount, ok := binder.FindMount(mountID)
	if !ok {
		return nil, fmt.Errorf("mount %q not found", mountID)
	}
	h, ok := mount.Content().(*Handle)
	if !ok || h == nil {
		return nil, fmt.Errorf("no chart rendered in %q", mountID)
	}
	return h, nil
}

// Export writes the chart currently rendered in mountID to w as a PNG.
func Export(binder view.Binder, mountID string, w io.Writer, size Size) error {
	h, err := HandleFor(binder, mountID)
	if err != nil {
		return err
	}
	return RenderPNG(w, h.Slot(), h.Series(), size)
}

// ExportFile exports the chart in mountID to filename, or to
// DefaultExportFilename when filename is empty. It returns the path written.
func ExportFile(binder view.Binder, mountID, filename string, size Size) (string, error) {
	if filename == "" {
		filename = DefaultExportFilename
	}

	h, err := HandleFor(binder, mountID)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create export dir: %w", err)
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", filename, err)
	}
	if err := RenderPNG(f, h.Slot(), h.Series(), size); err != nil {
		_ = f.Close()
		_ = os.Remove(filename)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", filename, err)
	}
	return filename, nil
}

// RenderPNG draws series as slot's chart kind. A zero size selects
// DefaultSize; any other size must be at least MinSize.
func RenderPNG(w io.Writer, slot Slot, s Series, size Size) error {
	if !s.Valid() {
		return fmt.Errorf("invalid %s series: %d labels, %d values, %d colors",
			slot.Name, len(s.Labels), len(s.Values), len(s.Colors))
	}
	if size == (Size{}) {
		size = DefaultSize
	}
	if size.Width < MinSize.Width || size.Height < MinSize.Height {
		return fmt.Errorf("%w: %dx%d, need at least %dx%d",
			ErrTooSmall, size.Width, size.Height, MinSize.Width, MinSize.Height)
	}

	switch slot.Kind {
	case Doughnut:
		return renderDonut(w, slot.Title, s, size)
	case Bar:
		return renderBar(w, slot.Title, s, size)
	default:
		return fmt.Errorf("unsupported chart kind %v", slot.Kind)
	}
}

func renderDonut(w io.Writer, title string, s Series, size Size) error {
	if s.Total() <= 0 {
		return ErrNoData
	}

	values := make([]chart.Value, 0, len(s.Values))
	for i, v := range s.Values {
		c := hexColor(s.Colors[i])
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d)", s.Labels[i], int64(v)),
			Value: v,
			Style: chart.Style{FillColor: c, StrokeColor: drawing.ColorWhite, StrokeWidth: 2},
		})
	}

	donut := chart.DonutChart{
		Title:  title,
		Width:  size.Width,
		Height: size.Height,
		Values: values,
	}
	if err := donut.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render %s: %w", title, err)
	}
	return nil
}

func renderBar(w io.Writer, title string, s Series, size Size) error {
	maxValue := 0.0
	bars := make([]chart.Value, 0, len(s.Values))
	for i, v := range s.Values {
		c := hexColor(s.Colors[i])
		bars = append(bars, chart.Value{
			Label: s.Labels[i],
			Value: v,
			Style: chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 1},
		})
		if v > maxValue {
			maxValue = v
		}
	}
	// go-chart rejects a zero-height range.
	if maxValue <= 0 {
		maxValue = 1
	}

	bar := chart.BarChart{
		Title:    title,
		Width:    size.Width,
		Height:   size.Height,
		BarWidth: size.Width / (len(bars)*2 + 1),
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxValue},
		},
		Bars: bars,
	}
	if err := bar.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render %s: %w", title, err)
	}
	return nil
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
