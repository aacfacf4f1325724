package cmd

import (
	"github.com/spf13/cobra"

	"github.com/smazurov/ledsync/internal/console"
	"github.com/smazurov/ledsync/internal/guard"
	"github.com/smazurov/ledsync/internal/version"
)

// CreateVersionCmd creates the version command.
func CreateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and guard strategy",
		Run: func(_ *cobra.Command, _ []string) {
			info := version.Get()
			_, _ = console.Printf("ledsync %s\n", version.String())
			_, _ = console.Printf("go: %s %s\n", info.GoVersion, info.Platform)
			_, _ = console.Printf("guard: %s\n", guard.StrategyName)
		},
	}
}
