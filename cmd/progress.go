package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursely/internal/report"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show progress across enrolled courses",
	RunE: func(cmd *cobra.Command, args []string) error {
		xlsxPath, _ := cmd.Flags().GetString("xlsx")

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx := cliContext(cmd, "cli")
		courses, err := env.client.Courses(ctx, env.userID())
		if err != nil {
			return fmt.Errorf("list courses: %w", err)
		}
		stats, err := env.store.AttemptRepo().TopicStats(ctx, env.userID())
		if err != nil {
			return fmt.Errorf("query quiz stats: %w", err)
		}
		p := report.Build(env.userID(), courses, stats, time.Now())

		if len(p.Courses) == 0 {
			fmt.Println("Not enrolled in any course.")
		} else {
			fmt.Printf("%-40s  %s\n", "Course", "Progress")
			fmt.Println(strings.Repeat("─", 72))
			for _, c := range p.Courses {
				fmt.Printf("%-40s  %s %3.0f%%\n", truncate(c.Title, 40), bar(c.PercentComplete(), 20), c.PercentComplete())
			}
			fmt.Println(strings.Repeat("─", 72))
			fmt.Printf("Average %.0f%% · %d of %d completed\n", p.Average(), p.Completed(), len(p.Courses))
		}

		if xlsxPath == "" {
			return nil
		}
		f, err := os.Create(xlsxPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", xlsxPath, err)
		}
		if err := report.WriteXLSX(f, p); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", xlsxPath, err)
		}
		fmt.Println("Exported to", xlsxPath)
		return nil
	},
}

func init() {
	progressCmd.Flags().String("xlsx", "", "Also export the report to this XLSX file")
}

// bar renders a text progress bar for pct in [0, 100].
func bar(pct float64, width int) string {
	filled := int(float64(width) * max(0, min(pct, 100)) / 100)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
