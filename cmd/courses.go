package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List courses and your progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		enrolledOnly, _ := cmd.Flags().GetBool("enrolled")

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		courses, err := env.client.Courses(cliContext(cmd, "cli"), env.userID())
		if err != nil {
			return fmt.Errorf("list courses: %w", err)
		}

		fmt.Printf("%-10s  %-40s  %-12s  %-10s  %s\n", "ID", "Title", "Level", "Duration", "Progress")
		fmt.Println(strings.Repeat("─", 90))

		shown := 0
		for _, c := range courses {
			if enrolledOnly && !c.Enrolled() {
				continue
			}
			progress := "-"
			if c.Enrolled() {
				progress = fmt.Sprintf("%.0f%%", c.PercentComplete())
			}
			fmt.Printf("%-10s  %-40s  %-12s  %-10s  %s\n",
				c.ID, truncate(c.Title, 40), c.Level, c.Duration, progress)
			shown++
		}

		fmt.Printf("\n%d courses\n", shown)
		return nil
	},
}

func init() {
	coursesCmd.Flags().Bool("enrolled", false, "Only show courses you are enrolled in")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
