package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursely/internal/app"
	"github.com/abhisek/coursely/internal/screen"
	"github.com/abhisek/coursely/internal/selfupdate"
)

// runApp builds dependencies and launches the TUI. open, when set, builds a
// screen pushed above home.
func runApp(cmd *cobra.Command, open func(screen.Deps) screen.Screen) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	skip, _ := cmd.Flags().GetBool("skip-welcome")
	var updates screen.UpdateChecker
	if env.cfg.Update.Check {
		checker, err := selfupdate.New(env.cfg.Releases(), selfupdate.WithTimeout(5*time.Second))
		if err != nil {
			slog.Warn("update check disabled", "err", err)
		} else {
			updates = checker
		}
	}
	opts := app.Options{
		Deps: screen.Deps{
			Client:      env.client,
			Tracker:     env.tracker,
			Attempts:    env.store.AttemptRepo(),
			UserID:      env.cfg.User.ID,
			UserName:    env.cfg.User.Name,
			DownloadDir: downloadDir(),
			Version:     version,
			Updates:     updates,
		},
		SkipWelcome: skip || open != nil,
		Open:        open,
	}
	return app.Run(opts)
}

// downloadDir is where certificates and exports are saved: ~/Downloads when
// it exists, otherwise the working directory.
func downloadDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		dir := filepath.Join(home, "Downloads")
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			return dir
		}
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}
