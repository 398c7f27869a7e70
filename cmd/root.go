package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "coursely",
	Short: "Terminal client for the Coursely learning platform",
	Long:  "Coursely: browse courses, study topics, take quizzes and track progress from the terminal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, nil)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides COURSELY_DB env var)")
	pf.String("config", "", "Path to YAML config file (default $XDG_CONFIG_HOME/coursely/config.yaml)")
	pf.String("api-url", "", "Backend endpoint URL (overrides COURSELY_API_URL env var)")
	pf.String("user", "", "Learner user ID (overrides COURSELY_USER env var)")

	rootCmd.Flags().Bool("skip-welcome", false, "Start on the home screen")

	rootCmd.AddCommand(topicCmd)
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(certificateCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}
