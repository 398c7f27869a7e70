package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursely/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or save the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configuration after files, environment and flags are applied",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Write the effective configuration to the config file",
	Long: "Write the configuration after files, environment and flags are applied, so that\n" +
		"for example `coursely config save --api-url URL --user ID` persists the connection.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		from := path
		if _, err := os.Stat(path); path != "" && os.IsNotExist(err) {
			// Saving to a new file starts from the default one.
			from = ""
		}
		cfg, err := loadConfigFrom(cmd, from)
		if err != nil {
			return err
		}
		if name, _ := cmd.Flags().GetString("name"); name != "" {
			cfg.User.Name = name
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		if path == "" {
			if path, err = config.DefaultPath(); err != nil {
				return err
			}
		}
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Println("Saved configuration to", path)
		return nil
	},
}

func init() {
	configSaveCmd.Flags().String("name", "", "learner display name to store")
	configCmd.AddCommand(configShowCmd, configSaveCmd)
}
