package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/taskward/taskward/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// resolveConfigFile returns the --config flag value when set, otherwise
// the XDG config location if a taskward.yaml exists there.
func resolveConfigFile() string {
	if configFile != "" {
		return configFile
	}
	candidate := filepath.Join(xdg.ConfigDir(), "taskward.yaml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

// NewRootCmd creates the root command for the Taskward CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taskward",
		Short: "Taskward - a multi-user task tracker",
		Long: `Taskward is a multi-user task tracker with cookie-based sessions.
Accounts own their tasks; nobody else can see or touch them.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
