package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/npratt/deskboard/internal/actions"
	"github.com/npratt/deskboard/internal/config"
	"github.com/npratt/deskboard/internal/helpdesk"
)

var version = "dev"

func main() {
	logLevel := &slog.LevelVar{}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	viper.SetEnvPrefix("DESKBOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	rootCmd := newRootCmd(logger, logLevel)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Flags of the executing command are
// bound to the global viper before it runs.
func newRootCmd(logger *slog.Logger, logLevel *slog.LevelVar) *cobra.Command {
	// commandConfig loads config and the backend client for a command.
	commandConfig := func(cmd *cobra.Command) (*config.Config, *helpdesk.Client, error) {
		cfg, err := loadConfig(cmd.Flags(), viper.GetViper())
		if err != nil {
			return nil, nil, err
		}
		client, err := newClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		return cfg, client, nil
	}

	rootCmd := &cobra.Command{
		Use:   "deskboard",
		Short: "Terminal dashboard for the IT helpdesk",
		Long: `deskboard is a terminal dashboard for an IT helpdesk backend.

It charts ticket statistics, refreshing them periodically, runs live
keyword searches and applies ticket status and assignment changes with
notifications.

Run without a subcommand on a terminal to open the dashboard.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			if err := viper.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("bind flags: %w", err)
			}
			if viper.GetBool(FlagVerbose) {
				logLevel.Set(slog.LevelDebug)
				logger.Debug("verbose logging enabled")
			}
			return nil
		},
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().Bool(FlagVerbose, false, "Enable verbose (debug) logging")
	rootCmd.PersistentFlags().String(FlagConfig, "", "Config file path (default: .deskboard/config.yaml)")
	rootCmd.PersistentFlags().String(FlagLogFile, "", "Log file path")
	rootCmd.PersistentFlags().String(FlagBaseURL, "", "Helpdesk backend base URL")

	// Version command
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "deskboard %s\n", version)
		},
	}

	// Dash command
	dashCmd := &cobra.Command{
		Use:   "dash",
		Short: "Open the terminal dashboard",
		Long: `Open the terminal dashboard.

Charts refresh every --refresh-interval. Press / to search, 1-5 to set the
status of the selected ticket, a to assign it, e to export the charts and
q to quit. Use --admin to show the admin chart variants.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("dash requires a terminal; use watch for headless refreshes")
			}

			cfg, client, err := commandConfig(cmd)
			if err != nil {
				return err
			}

			// TUI mode: redirect logger to file while the dashboard owns the terminal
			tuiLog, err := SetupTUILogger(filepath.Dir(cfg.Paths.Log), logLevel, cfg.LogRotation)
			if err != nil {
				return err
			}
			defer func() { _ = tuiLog.Close() }()
			slog.SetDefault(tuiLog.Logger)

			tuiLog.Logger.Info("deskboard starting",
				"version", version,
				"base_url", client.BaseURL(),
				"admin", cfg.Charts.Admin,
				"refresh_interval", cfg.Charts.RefreshInterval,
			)

			return runDash(cmd.Context(), client, cfg, tuiLog.Logger)
		},
	}
	dashCmd.Flags().Bool(FlagAdmin, false, "Show the admin chart variants")
	dashCmd.Flags().Duration(FlagRefreshInterval, 0, "Chart refresh interval (default 5m)")
	dashCmd.Flags().String(FlagExportDir, "", "Directory for exported chart PNGs")

	// The bare command opens the dashboard on a terminal
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return cmd.Help()
		}
		return dashCmd.RunE(cmd, args)
	}

	// Watch command
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh charts headlessly and log each snapshot",
		Long: `Refresh the ticket statistics on a schedule without a terminal UI.

Each refresh is logged. With --export-dir, the charts are also written there
as PNG files after every refresh. Stops on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := commandConfig(cmd)
			if err != nil {
				return err
			}

			exportDir := ""
			if cmd.Flags().Changed(FlagExportDir) {
				exportDir = cfg.Charts.ExportDir
			}
			return runWatch(cmd.Context(), client, cfg, logger, exportDir)
		},
	}
	watchCmd.Flags().Bool(FlagAdmin, false, "Also render the admin chart variants")
	watchCmd.Flags().Duration(FlagRefreshInterval, 0, "Chart refresh interval (default 5m)")
	watchCmd.Flags().String(FlagExportDir, "", "Write chart PNGs here after every refresh")
	watchCmd.Flags().Int(FlagWidth, 0, "Exported chart width in pixels")
	watchCmd.Flags().Int(FlagHeight, 0, "Exported chart height in pixels")

	// Stats command
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print ticket statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := commandConfig(cmd)
			if err != nil {
				return err
			}

			stats, err := client.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch stats: %s", helpdesk.Describe(err))
			}
			return writeStats(cmd.OutOrStdout(), stats, viper.GetString(FlagOutput))
		},
	}
	statsCmd.Flags().StringP(FlagOutput, "o", OutputText, "Output format (text, json, yaml)")

	// Search command
	searchCmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search tickets by keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := commandConfig(cmd)
			if err != nil {
				return err
			}
			return runSearch(cmd.Context(), cmd.OutOrStdout(), client, strings.Join(args, " "), cfg.Search.MinLength)
		},
	}

	// Status command
	statusCmd := &cobra.Command{
		Use:   "status <ticket-id> <status>",
		Short: "Change a ticket's status",
		Long: `Change a ticket's status.

Status may be the backend name (IN_PROGRESS) or the display name
("In Progress"), in any case.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticketID, err := parseID("ticket", args[0])
			if err != nil {
				return err
			}
			status, err := helpdesk.ParseStatus(args[1])
			if err != nil {
				return err
			}

			cfg, client, err := commandConfig(cmd)
			if err != nil {
				return err
			}
			return runMutation(cmd.Context(), cmd.OutOrStdout(), client, cfg, logger, func(a *actions.Actions) {
				a.UpdateStatus(ticketID, status)
			})
		},
	}

	// Assign command
	assignCmd := &cobra.Command{
		Use:   "assign <ticket-id> <user-id>",
		Short: "Assign a ticket to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticketID, err := parseID("ticket", args[0])
			if err != nil {
				return err
			}
			userID, err := parseID("user", args[1])
			if err != nil {
				return err
			}

			cfg, client, err := commandConfig(cmd)
			if err != nil {
				return err
			}
			return runMutation(cmd.Context(), cmd.OutOrStdout(), client, cfg, logger, func(a *actions.Actions) {
				a.Assign(ticketID, userID)
			})
		},
	}

	// Export command
	exportCmd := &cobra.Command{
		Use:   "export <status|priority> [file]",
		Short: "Write a chart as a PNG file",
		Long: `Fetch the current statistics and write one chart as a PNG file.

The chart is named by slot (status, priority) or by mount id
(adminStatusChart). Without a file, it is written to
<export-dir>/<slot>.png.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := commandConfig(cmd)
			if err != nil {
				return err
			}

			file := ""
			if len(args) == 2 {
				file = args[1]
			}
			path, err := runExport(cmd.Context(), client, cfg, logger, args[0], file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Chart written to %s\n", path)
			return nil
		},
	}
	exportCmd.Flags().String(FlagExportDir, "", "Directory for the PNG when no file is given")
	exportCmd.Flags().Int(FlagWidth, 0, "Chart width in pixels (default 640)")
	exportCmd.Flags().Int(FlagHeight, 0, "Chart height in pixels (default 480)")

	// Register all commands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dashCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(exportCmd)

	return rootCmd
}
