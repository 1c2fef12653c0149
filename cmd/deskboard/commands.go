package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/npratt/deskboard/internal/actions"
	"github.com/npratt/deskboard/internal/charts"
	"github.com/npratt/deskboard/internal/config"
	"github.com/npratt/deskboard/internal/helpdesk"
	"github.com/npratt/deskboard/internal/notify"
	"github.com/npratt/deskboard/internal/search"
	"github.com/npratt/deskboard/internal/shutdown"
	"github.com/npratt/deskboard/internal/tui"
	"github.com/npratt/deskboard/internal/view"
)

// shutdownTimeout bounds how long watch waits for an in-flight refresh.
const shutdownTimeout = 10 * time.Second

// loadConfig resolves configuration from files, environment and flags.
func loadConfig(flags *pflag.FlagSet, v *viper.Viper) (*config.Config, error) {
	cfg, err := config.LoadConfig(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := applyFlagOverrides(flags, v, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlagOverrides copies explicitly set flags onto cfg and revalidates it.
func applyFlagOverrides(flags *pflag.FlagSet, v *viper.Viper, cfg *config.Config) error {
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed(FlagBaseURL) {
		cfg.API.BaseURL = v.GetString(FlagBaseURL)
	}
	if changed(FlagLogFile) {
		cfg.Paths.Log = v.GetString(FlagLogFile)
	}
	if changed(FlagAdmin) {
		cfg.Charts.Admin = v.GetBool(FlagAdmin)
	}
	if changed(FlagRefreshInterval) {
		cfg.Charts.RefreshInterval = v.GetDuration(FlagRefreshInterval)
	}
	if changed(FlagExportDir) {
		cfg.Charts.ExportDir = v.GetString(FlagExportDir)
	}
	if changed(FlagWidth) {
		cfg.Charts.ExportWidth = v.GetInt(FlagWidth)
	}
	if changed(FlagHeight) {
		cfg.Charts.ExportHeight = v.GetInt(FlagHeight)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// newClient builds the helpdesk client described by cfg.
func newClient(cfg *config.Config) (*helpdesk.Client, error) {
	return helpdesk.NewClient(cfg.API.BaseURL,
		helpdesk.WithTimeout(cfg.API.Timeout),
		helpdesk.WithSearchPath(cfg.API.SearchPath),
		helpdesk.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst),
		helpdesk.WithUserAgent("deskboard/"+version),
	)
}

func exportSize(cfg *config.Config) charts.Size {
	return charts.Size{Width: cfg.Charts.ExportWidth, Height: cfg.Charts.ExportHeight}
}

// chartMountIDs returns the chart mounts the dashboard lays out.
func chartMountIDs(admin bool) []string {
	ids := []string{view.StatusChart, view.PriorityChart}
	if admin {
		ids = append(ids, view.AdminStatusChart, view.AdminPriorityChart)
	}
	return ids
}

// exportCharts writes every rendered chart on surface into dir as
// <mount>.png. Charts that fail are reported together; the rest are still
// written.
func exportCharts(surface *view.Surface, dir string, size charts.Size) ([]string, error) {
	var (
		paths []string
		errs  []error
	)
	for _, slot := range charts.Slots {
		for _, id := range slot.MountIDs {
			if _, ok := surface.FindMount(id); !ok {
				continue
			}
			path, err := charts.ExportFile(surface, id, filepath.Join(dir, id+".png"), size)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
				continue
			}
			paths = append(paths, path)
		}
	}
	return paths, errors.Join(errs...)
}

// resolveChart maps a slot name ("status") or mount id ("adminPriorityChart")
// to its slot and the mount to render into.
func resolveChart(name string) (charts.Slot, string, error) {
	for _, slot := range charts.Slots {
		if strings.EqualFold(slot.Name, name) {
			return slot, slot.MountIDs[0], nil
		}
	}
	if slot, ok := charts.SlotForMount(name); ok {
		return slot, name, nil
	}
	return charts.Slot{}, "", fmt.Errorf("unknown chart %q (want status or priority)", name)
}

// parseID parses a positive ticket or user id.
func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, s)
	}
	return id, nil
}

// writeStats prints a stats snapshot in the requested format.
func writeStats(w io.Writer, stats *helpdesk.Stats, format string) error {
	switch format {
	case OutputJSON:
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal stats: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(stats); err != nil {
			return fmt.Errorf("marshal stats: %w", err)
		}
		return enc.Close()
	case OutputText, "":
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}

	status, priority := charts.Project(*stats)
	writeSeries(w, charts.StatusSlot.Title, status)
	writeSeries(w, charts.PrioritySlot.Title, priority)
	_, err := fmt.Fprintf(w, "Total: %s  Assigned to me: %s\n",
		humanize.Comma(stats.TotalTickets), humanize.Comma(stats.MyAssignedTickets))
	return err
}

func writeSeries(w io.Writer, title string, s charts.Series) {
	fmt.Fprintln(w, title)
	for i, label := range s.Labels {
		fmt.Fprintf(w, "  %-12s %s\n", label, humanize.Comma(int64(s.Values[i])))
	}
	fmt.Fprintln(w)
}

// runSearch runs a single keyword search and lists the matches.
func runSearch(ctx context.Context, w io.Writer, client helpdesk.TicketSearcher, keyword string, minLength int) error {
	keyword = strings.TrimSpace(keyword)
	if len([]rune(keyword)) < minLength {
		return fmt.Errorf("search keyword must be at least %d characters", minLength)
	}

	items, err := client.SearchTickets(ctx, keyword)
	if err != nil {
		return fmt.Errorf("search failed: %s", helpdesk.Describe(err))
	}
	printTickets(w, items)
	return nil
}

func printTickets(w io.Writer, items []helpdesk.TicketSummary) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No tickets found")
		return
	}
	for _, t := range items {
		line := fmt.Sprintf("#%-6d %-12s %-10s %s", t.ID, t.Status.DisplayName, t.Category.DisplayName, t.Title)
		if t.AssignedToUsername != "" {
			line += " (" + t.AssignedToUsername + ")"
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

// runMutation applies one ticket change through actions and prints the
// resulting toast. A danger toast becomes the command's error.
func runMutation(ctx context.Context, w io.Writer, client helpdesk.TicketUpdater, cfg *config.Config, logger *slog.Logger, apply func(*actions.Actions)) error {
	var failed atomic.Bool
	toaster := notify.New(view.NewSurface(),
		notify.WithAutoDismiss(0),
		notify.WithLogger(logger),
		notify.WithListener(func(n notify.Notification) {
			fmt.Fprintln(w, n.Message)
			if n.Kind == notify.Danger {
				failed.Store(true)
			}
		}),
	)

	a := actions.New(client, toaster, nil,
		actions.WithTimeout(cfg.Actions.Timeout),
		actions.WithLogger(logger),
		actions.WithContext(ctx),
	)
	apply(a)
	a.Wait()

	if failed.Load() {
		return errors.New("ticket update failed")
	}
	return nil
}

// runExport fetches stats once and writes one chart as a PNG.
func runExport(ctx context.Context, client helpdesk.StatsReader, cfg *config.Config, logger *slog.Logger, chart, file string) (string, error) {
	slot, mountID, err := resolveChart(chart)
	if err != nil {
		return "", err
	}

	surface := view.NewSurface(mountID)
	pipeline := charts.NewPipeline(client, surface, logger)
	if err := pipeline.Refresh(ctx); err != nil {
		return "", fmt.Errorf("fetch stats: %s", helpdesk.Describe(errors.Unwrap(err)))
	}

	if file == "" {
		file = filepath.Join(cfg.Charts.ExportDir, slot.Name+".png")
	}
	return charts.ExportFile(surface, mountID, file, exportSize(cfg))
}

// runWatch refreshes the charts on a schedule without a terminal UI, logging
// each snapshot, until the context ends or a shutdown signal arrives. With
// exportDir set, the charts are written there after every refresh.
func runWatch(ctx context.Context, client helpdesk.StatsReader, cfg *config.Config, logger *slog.Logger, exportDir string) error {
	surface := view.NewSurface(chartMountIDs(cfg.Charts.Admin)...)
	size := exportSize(cfg)

	pipeline := charts.NewPipeline(client, surface, logger,
		charts.WithInterval(cfg.Charts.RefreshInterval),
		charts.WithListener(func(s *helpdesk.Stats) {
			logger.Info("stats refreshed",
				"total", s.TotalTickets,
				"open", s.OpenTickets,
				"in_progress", s.InProgressTickets,
				"resolved", s.ResolvedTickets,
				"closed", s.ClosedTickets,
				"urgent", s.UrgentTickets,
				"high", s.HighPriorityTickets,
			)
			if exportDir == "" {
				return
			}
			paths, err := exportCharts(surface, exportDir, size)
			if err != nil {
				logger.Warn("chart export failed", "error", err)
			}
			if len(paths) > 0 {
				logger.Debug("charts exported", "paths", paths)
			}
		}),
	)

	logger.Info("deskboard watching",
		"version", version,
		"interval", pipeline.Interval(),
		"admin", cfg.Charts.Admin,
	)

	return shutdown.RunWithGracefulShutdown(ctx, logger, shutdownTimeout,
		pipeline.Run,
		func(shutdownCtx context.Context) error {
			done := make(chan struct{})
			go func() {
				pipeline.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-shutdownCtx.Done():
				return shutdownCtx.Err()
			}
		},
	)
}

// runDash runs the terminal dashboard until the user quits.
func runDash(ctx context.Context, client helpdesk.API, cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ids := append(chartMountIDs(cfg.Charts.Admin), view.SearchResults)
	surface := view.NewSurface(ids...)

	pipeline := charts.NewPipeline(client, surface, logger,
		charts.WithInterval(cfg.Charts.RefreshInterval))

	searcher := search.New(client, surface, view.SearchResults,
		search.WithDebounce(cfg.Search.Debounce),
		search.WithMinLength(cfg.Search.MinLength),
		search.WithTimeout(cfg.API.Timeout),
		search.WithLogger(logger),
		search.WithContext(ctx),
	)

	toaster := notify.New(surface,
		notify.WithAutoDismiss(cfg.Notify.AutoDismiss),
		notify.WithLogger(logger),
	)

	mutator := actions.New(client, toaster,
		actions.ReloaderFunc(func() {
			pipeline.Trigger(ctx)
			searcher.Rerun()
		}),
		actions.WithReloadDelay(cfg.Actions.ReloadDelay),
		actions.WithTimeout(cfg.Actions.Timeout),
		actions.WithLogger(logger),
		actions.WithContext(ctx),
	)

	app := tui.New(surface,
		tui.WithStats(pipeline),
		tui.WithSearcher(searcher),
		tui.WithToaster(toaster),
		tui.WithMutator(mutator),
		tui.WithExporter(func() ([]string, error) {
			return exportCharts(surface, cfg.Charts.ExportDir, exportSize(cfg))
		}),
		tui.WithOnRefresh(func() { pipeline.Trigger(ctx) }),
		tui.WithOnQuit(cancel),
		tui.WithAdmin(cfg.Charts.Admin),
	)

	// Run pipeline in background
	pipelineDone := make(chan error, 1)
	go func() {
		pipelineDone <- pipeline.Run(ctx)
	}()

	// Run TUI in foreground (blocks until quit)
	tuiErr := app.Run()

	cancel()
	<-pipelineDone
	mutator.Wait()

	return tuiErr
}
