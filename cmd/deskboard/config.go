package main

// Flag names for Viper binding
const (
	// Global flags
	FlagVerbose = "verbose"
	FlagConfig  = "config"
	FlagLogFile = "log-file"
	FlagBaseURL = "base-url"

	// Dash command flags
	FlagAdmin           = "admin"
	FlagRefreshInterval = "refresh-interval"

	// Stats command flags
	FlagOutput = "output"

	// Export command flags
	FlagWidth     = "width"
	FlagHeight    = "height"
	FlagExportDir = "export-dir"
)

// Output formats for the stats command.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)
