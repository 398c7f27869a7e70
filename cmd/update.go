package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursely/internal/selfupdate"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update coursely to the latest release",
	Long:  "Download the newest coursely release from the configured repository (update.repo), verify its checksum and replace this binary.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if dbPath, err := resolveDBPath(cfg); err == nil {
			defer setupLog(cfg, dbPath)()
		}

		checker, err := selfupdate.New(cfg.Releases(), selfupdate.WithTimeout(2*time.Minute))
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		if only, _ := cmd.Flags().GetBool("check"); only {
			n, err := checker.Check(ctx, version)
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		}

		tag, _ := cmd.Flags().GetString("to")
		_, err = checker.Install(ctx, version, tag, func(_ selfupdate.Stage, msg string) {
			fmt.Println(msg)
		})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, selfupdate.ErrDevBuild):
			fmt.Println("Cannot update a development build. Install a release build first.")
			return nil
		case errors.Is(err, selfupdate.ErrAlreadyLatest):
			fmt.Printf("coursely %s is already the latest release.\n", version)
			return nil
		case errors.Is(err, os.ErrPermission):
			return fmt.Errorf("%w\n\nTry running: sudo coursely update", err)
		}
		return err
	},
}

func init() {
	updateCmd.Flags().Bool("check", false, "only report whether a newer release exists")
	updateCmd.Flags().String("to", "", "install this release tag instead of the latest")
}
