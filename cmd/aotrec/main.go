package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := buildRoot().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRoot creates the root command with all subcommands attached.
func buildRoot() *cobra.Command {
	serveFlags := &ServeFlags{}
	statusFlags := &StatusFlags{}
	endFlags := &EndFlags{}
	statsFlags := &StatsFlags{}
	workloadFlags := &StatsFlags{}
	recordFlags := &RecordFlags{}
	sessionsFlags := &SessionsFlags{}

	root := &cobra.Command{
		Use:          "aotrec",
		Short:        "Recording and workload telemetry daemon for AOT cache training",
		SilenceUsage: true,
	}

	root.AddCommand(
		createServeCommand(serveFlags),
		createStatusCommand(statusFlags),
		createEndCommand(endFlags),
		createStatsCommand(statsFlags),
		createWorkloadsCommand(workloadFlags),
		createRecordCommand(recordFlags),
		createSessionsCommand(sessionsFlags),
	)
	return root
}
