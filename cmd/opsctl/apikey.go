package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCreateAPIKeyCmd() *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "create-api-key",
		Short: "Issue an API key for an existing user",
		Long:  "Issues a key owned by the given user. The secret is printed once and cannot be recovered.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || name == "" {
				return fmt.Errorf("--email and --name are required")
			}
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				user, err := findUser(ctx, e, email)
				if err != nil {
					return err
				}
				issued, err := e.services.APIKeys.Create(ctx, user.ID, name)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "id:     %s\nprefix: %s\nkey:    %s\n", issued.ID, issued.Prefix, issued.Key)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "owner email")
	cmd.Flags().StringVar(&name, "name", "", "key name")
	return cmd
}
