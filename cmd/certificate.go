package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var certificateCmd = &cobra.Command{
	Use:   "certificate",
	Short: "Download the completion certificate for a course",
	RunE: func(cmd *cobra.Command, args []string) error {
		courseID, _ := cmd.Flags().GetString("course")
		out, _ := cmd.Flags().GetString("out")
		if courseID == "" {
			return fmt.Errorf("--course is required")
		}
		if out == "" {
			out = downloadDir()
		}

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		cert, err := env.client.Certificate(cliContext(cmd, "cli"), courseID, env.userID())
		if err != nil {
			return fmt.Errorf("download certificate: %w", err)
		}
		path, err := cert.Save(out)
		if err != nil {
			return err
		}
		fmt.Println("Certificate saved to", path)
		return nil
	},
}

func init() {
	certificateCmd.Flags().String("course", "", "Course ID")
	certificateCmd.Flags().String("out", "", "Directory to save the certificate in (default ~/Downloads)")
}
