package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/iacol-backend/internal/auth"
)

func newCreateSuperuserCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create-superuser",
		Short: "Create or promote the bootstrap superuser",
		Long:  "Creates the superuser when missing and promotes an existing account otherwise. Defaults come from IACOL_ADMIN_EMAIL and IACOL_ADMIN_PASSWORD.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				if email == "" {
					email = e.cfg.Admin.Email
				}
				if password == "" {
					password = e.cfg.Admin.Password
				}
				if email == "" || password == "" {
					return fmt.Errorf("email and password are required")
				}
				created, err := auth.EnsureSuperuser(ctx, e.services.Users, e.cfg.Password, email, password)
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(os.Stdout, "superuser %s created\n", email)
				} else {
					fmt.Fprintf(os.Stdout, "superuser %s already present, promoted\n", email)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "superuser email")
	cmd.Flags().StringVar(&password, "password", "", "superuser password")
	return cmd
}
