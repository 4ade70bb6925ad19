package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the shiftclaim application
var rootCmd = &cobra.Command{
	Use:   "shiftclaim",
	Short: "Claims cancelled TA office hours shifts as soon as they are posted",
	Long: `shiftclaim watches a group chat for messages that cancel an office hours
shift, works out the time range, checks your Google Calendar and, when you are
free, replies in the chat and blocks the slot in your calendar.

It can run as:
  - A standalone watcher (default)
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "shiftclaim version %s\n" .Version}}`)

	// If no subcommand is provided, run the watch command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "watch")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
