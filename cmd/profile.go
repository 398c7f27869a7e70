package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx := cliContext(cmd, "cli")
		p, err := env.client.Profile(ctx, env.userID())
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}

		nameSet := cmd.Flags().Changed("name")
		phoneSet := cmd.Flags().Changed("phone")
		if nameSet || phoneSet {
			updated := *p
			if nameSet {
				updated.Name, _ = cmd.Flags().GetString("name")
				updated.Name = strings.TrimSpace(updated.Name)
			}
			if phoneSet {
				updated.Phone, _ = cmd.Flags().GetString("phone")
				updated.Phone = strings.TrimSpace(updated.Phone)
			}
			if err := updated.Validate(); err != nil {
				return err
			}
			if err := env.client.UpdateProfile(ctx, updated); err != nil {
				return fmt.Errorf("update profile: %w", err)
			}
			p = &updated
			fmt.Println("Profile updated.")
			fmt.Println()
		}

		fmt.Printf("User ID:  %s\n", p.UserID)
		fmt.Printf("Name:     %s\n", p.Name)
		fmt.Printf("Email:    %s\n", p.Email)
		fmt.Printf("Phone:    %s\n", p.Phone)
		return nil
	},
}

func init() {
	profileCmd.Flags().String("name", "", "New display name")
	profileCmd.Flags().String("phone", "", "New phone number")
}
