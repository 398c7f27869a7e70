package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursely/internal/screen"
	"github.com/abhisek/coursely/internal/screens/topic"
)

var topicCmd = &cobra.Command{
	Use:   "topic",
	Short: "Open a course topic and its quiz",
	RunE: func(cmd *cobra.Command, args []string) error {
		courseID, _ := cmd.Flags().GetString("course")
		index, _ := cmd.Flags().GetInt("index")
		if courseID == "" {
			return fmt.Errorf("--course is required")
		}
		if index < 1 {
			return fmt.Errorf("--index must be 1 or greater, got %d", index)
		}
		return runApp(cmd, func(deps screen.Deps) screen.Screen {
			return topic.New(deps, courseID, index)
		})
	},
}

func init() {
	topicCmd.Flags().String("course", "", "Course ID")
	topicCmd.Flags().Int("index", 1, "Topic index within the course (1-based)")
}
