package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List recent backend requests from the local request log",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		action, _ := cmd.Flags().GetString("action")
		failed, _ := cmd.Flags().GetBool("failed")

		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		events, err := st.EventRepo().RecentRequests(context.Background(), limit)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No backend requests recorded.")
			return nil
		}

		fmt.Printf("%-6s  %-19s  %-6s  %-22s  %-7s  %s\n",
			"Seq", "Timestamp", "Origin", "Action", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 90))

		for _, e := range events {
			if action != "" && e.Action != action {
				continue
			}
			if failed && e.Success {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗ " + truncate(e.ErrorMessage, 30)
			}
			fmt.Printf("%-6d  %-19s  %-6s  %-22s  %-7d  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Origin,
				e.Action,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

func init() {
	requestsCmd.Flags().Int("limit", 50, "Maximum number of requests to show")
	requestsCmd.Flags().String("action", "", "Only show this backend action")
	requestsCmd.Flags().Bool("failed", false, "Only show failed requests")
}
