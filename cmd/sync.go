package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Retry topic completions that failed to reach the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx := cliContext(cmd, "sync")
		pending, err := env.tracker.Pending(ctx, env.userID())
		if err != nil {
			return fmt.Errorf("list pending completions: %w", err)
		}
		if len(pending) == 0 {
			fmt.Println("Nothing to sync.")
			return nil
		}

		fmt.Printf("%-5s  %-10s  %-10s  %-8s  %s\n", "ID", "Course", "Topic", "Tries", "Last error")
		fmt.Println(strings.Repeat("─", 80))
		for _, p := range pending {
			fmt.Printf("%-5d  %-10s  %-10s  %-8d  %s\n",
				p.ID, p.CourseID, p.TopicID, p.Attempts, truncate(p.LastError, 40))
		}
		if dryRun {
			return nil
		}

		res, err := env.tracker.Sync(ctx, env.userID())
		fmt.Printf("\nDelivered %d, still pending %d\n", res.Delivered, res.Failed)
		for _, c := range res.CompletedCourses {
			fmt.Printf("Course %s completed. Run `coursely certificate --course %s` to download the certificate.\n", c, c)
		}
		return err
	},
}

func init() {
	syncCmd.Flags().Bool("dry-run", false, "List pending completions without sending them")
}
