package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/iacol-backend/internal/entitlements"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
)

func newCheckDashboardCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "check-dashboard",
		Short: "Run the dashboard aggregates for a user and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				user, err := findUser(ctx, e, email)
				if err != nil {
					return err
				}
				home, err := e.services.Dashboard.Home(ctx, entitlements.Viewer{
					UserID: user.ID,
					Staff:  user.Role.IsStaff(),
				})
				if err != nil {
					printDiagnostics(err)
					return err
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(home)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the user to check")
	return cmd
}

func printDiagnostics(err error) {
	dump := pkgerrors.Dump(err)
	if !dump.HasDiagnostics() {
		return
	}
	for k, v := range dump.Fields() {
		fmt.Fprintf(os.Stderr, "%s: %v\n", k, v)
	}
}
