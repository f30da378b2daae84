package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(string(data))
}

func reachableClient(apiURL string, f func() *APIClient) (*APIClient, error) {
	c := f()
	if !c.IsReachable() {
		return nil, fmt.Errorf("daemon not reachable at %s - start it first with 'aotrec serve'", apiURL)
	}
	return c, nil
}

func createStatusCommand(f *StatusFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recording mode and duration",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := reachableClient(f.APIUrl, func() *APIClient { return NewAPIClient(f.APIUrl, f.APITimeout) })
			if err != nil {
				return err
			}
			st, err := c.GetStatus()
			if err != nil {
				return err
			}
			printJSON(st)
			return nil
		},
	}
	addAPIFlags(cmd, &f.APIUrl, &f.APITimeout)
	return cmd
}

func createEndCommand(f *EndFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "end",
		Short: "End the active recording",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := reachableClient(f.APIUrl, func() *APIClient { return NewAPIClient(f.APIUrl, f.APITimeout) })
			if err != nil {
				return err
			}
			ended, err := c.EndRecording()
			if err != nil {
				return err
			}
			if ended {
				fmt.Println("recording ended")
			} else {
				fmt.Println("no active recording to end")
			}
			return nil
		},
	}
	addAPIFlags(cmd, &f.APIUrl, &f.APITimeout)
	return cmd
}

func createStatsCommand(f *StatsFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregated workload statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := reachableClient(f.APIUrl, func() *APIClient { return NewAPIClient(f.APIUrl, f.APITimeout) })
			if err != nil {
				return err
			}
			out, err := c.GetStats(f.Name)
			if err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "workload name (all workloads when empty)")
	addAPIFlags(cmd, &f.APIUrl, &f.APITimeout)
	return cmd
}

func createWorkloadsCommand(f *StatsFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workloads",
		Short: "List observed workload names",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := reachableClient(f.APIUrl, func() *APIClient { return NewAPIClient(f.APIUrl, f.APITimeout) })
			if err != nil {
				return err
			}
			names, err := c.GetWorkloads()
			if err != nil {
				return err
			}
			printJSON(names)
			return nil
		},
	}
	addAPIFlags(cmd, &f.APIUrl, &f.APITimeout)
	return cmd
}

func createRecordCommand(f *RecordFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Report one work sample to the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.Name == "" {
				return fmt.Errorf("workload name is required")
			}
			c, err := reachableClient(f.APIUrl, func() *APIClient { return NewAPIClient(f.APIUrl, f.APITimeout) })
			if err != nil {
				return err
			}
			return c.RecordWorkDone(f.Name, f.Duration)
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "workload name")
	cmd.Flags().DurationVar(&f.Duration, "duration", 0, "measured work duration (e.g. 5ms)")
	addAPIFlags(cmd, &f.APIUrl, &f.APITimeout)
	return cmd
}

func createSessionsCommand(f *SessionsFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List persisted recording sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := reachableClient(f.APIUrl, func() *APIClient { return NewAPIClient(f.APIUrl, f.APITimeout) })
			if err != nil {
				return err
			}
			out, err := c.GetSessions(f.Limit)
			if err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
	cmd.Flags().IntVar(&f.Limit, "limit", 20, "maximum sessions to list")
	addAPIFlags(cmd, &f.APIUrl, &f.APITimeout)
	return cmd
}

func addAPIFlags(cmd *cobra.Command, apiURL *string, timeout *time.Duration) {
	cmd.Flags().StringVar(apiURL, "api-url", "http://127.0.0.1:8080/api", "daemon API base URL")
	cmd.Flags().DurationVar(timeout, "api-timeout", 10*time.Second, "API request timeout")
}
