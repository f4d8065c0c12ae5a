package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bookmind/bookmind/internal/storage"
)

// newUsersCmd creates the users command group. The create subcommand exists
// mainly to bootstrap the first admin account, since every write endpoint
// requires authentication.
func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUsersCreateCmd())
	cmd.AddCommand(newUsersListCmd())
	return cmd
}

func newUsersCreateCmd() *cobra.Command {
	var password string
	var admin bool

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := storage.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			var roles []string
			if admin {
				roles = []string{storage.AdminRole}
			}

			user, err := db.CreateUser(cmd.Context(), args[0], password, roles)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created user %q (id %d, roles: %s)\n",
				user.Username, user.ID, rolesLabel(user.Roles))
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Password for the new user (required)")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant the admin role")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUsersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := storage.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			users, err := db.ListUsers(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, user := range users {
				state := "active"
				if !user.IsActive {
					state = "inactive"
				}
				fmt.Fprintf(out, "%4d  %-20s %-8s %s\n",
					user.ID, user.Username, state, rolesLabel(user.Roles))
			}
			return nil
		},
	}
}

func rolesLabel(roles []string) string {
	if len(roles) == 0 {
		return "-"
	}
	return strings.Join(roles, ",")
}
