package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursely/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List quiz attempts recorded on this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		courseID, _ := cmd.Flags().GetString("course")

		st, cfg, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		attempts, err := st.AttemptRepo().Attempts(context.Background(), store.AttemptQuery{
			UserID:   cfg.User.ID,
			CourseID: courseID,
			Limit:    limit,
		})
		if err != nil {
			return fmt.Errorf("query attempts: %w", err)
		}
		if len(attempts) == 0 {
			fmt.Println("No quiz attempts recorded yet.")
			return nil
		}

		fmt.Printf("%-19s  %-10s  %-10s  %-8s  %-9s  %s\n",
			"Timestamp", "Course", "Topic", "Score", "Answered", "Attempt")
		fmt.Println(strings.Repeat("─", 100))
		for _, a := range attempts {
			fmt.Printf("%-19s  %-10s  %-10s  %-8s  %-9d  %s\n",
				a.Timestamp.Local().Format("2006-01-02 15:04:05"),
				a.CourseID, a.TopicID,
				fmt.Sprintf("%d/%d", a.Correct, a.Total),
				a.Attempted, a.AttemptID)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of attempts to show")
	historyCmd.Flags().String("course", "", "Only show attempts for this course")
}
