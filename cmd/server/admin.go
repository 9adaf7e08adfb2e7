package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/invoicer/internal/auth"
	"github.com/mmynk/invoicer/internal/service"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage super-admin accounts",
}

var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant super-admin to a registered user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setSuperAdmin(cmd, args[0], true)
	},
}

var demoteCmd = &cobra.Command{
	Use:   "demote <email>",
	Short: "Revoke super-admin from a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setSuperAdmin(cmd, args[0], false)
	},
}

func init() {
	adminCmd.AddCommand(promoteCmd, demoteCmd)
}

func setSuperAdmin(cmd *cobra.Command, email string, admin bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	users := service.NewUserService(store, auth.NewPasswordAuthenticator(store))
	user, err := users.SetSuperAdmin(cmd.Context(), email, admin)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", email, err)
	}
	cmd.Printf("%s is_super_admin=%t\n", user.Email, user.IsSuperAdmin)
	return nil
}
