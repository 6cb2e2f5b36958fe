package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	logLevel   string
	logFormat  string
)

// newRootCommand builds the command tree. Each call returns fresh commands
// so tests can execute them in isolation.
func newRootCommand() *cobra.Command {
	serve := newServeCommand()

	root := &cobra.Command{
		Use:   "server",
		Short: "Thai Visa Checklist server - visa checklists and 90-day reporting",
		Long: `Thai Visa Checklist server renders the visa extension checklists, guides
and news pages, and runs the 90-day reporting calculator.

The server provides:
- Stage by stage checklists for marriage and retirement extensions
- A 90-day report calculator with calendar exports (ICS, Google Calendar)
- A contact form delivered by email`,
		SilenceUsage: true,
		// Run the serve command by default if no subcommand is specified
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve.RunE(cmd, args)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path (optional, uses env vars by default)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, console) (default: json)")

	root.AddCommand(serve)
	root.AddCommand(newVersionCommand())
	root.AddCommand(newHealthcheckCommand())
	root.AddCommand(newNinetyDayCommand())

	return root
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
