// Package commands holds the blogctl sub-commands.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/service"
)

// Backend is what the operator commands act on.
type Backend struct {
	Migrate func(ctx context.Context) error
	Users   service.UserService
	Tips    service.TipService
	Close   func()
}

// Loader opens a Backend. Commands call it lazily so --help needs no database.
type Loader func(ctx context.Context) (*Backend, error)

// NewRoot returns the blogctl root command wired to load.
func NewRoot(load Loader) *cobra.Command {
	root := &cobra.Command{
		Use:           "blogctl",
		Short:         "Operator tasks for the zerofiltre backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(migrateCmd(load), userCmd(load), tipCmd(load))
	return root
}

func withBackend(cmd *cobra.Command, load Loader, fn func(ctx context.Context, b *Backend) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := load(ctx)
	if err != nil {
		return err
	}
	if b.Close != nil {
		defer b.Close()
	}
	return fn(ctx, b)
}

func migrateCmd(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema when missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd, load, func(ctx context.Context, b *Backend) error {
				if err := b.Migrate(ctx); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return nil
			})
		},
	}
}

func userCmd(load Loader) *cobra.Command {
	user := &cobra.Command{Use: "user", Short: "Manage users"}
	user.AddCommand(&cobra.Command{
		Use:   "promote <email>",
		Short: "Grant the admin role to the account with this email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, load, func(ctx context.Context, b *Backend) error {
				u, err := b.Users.PromoteByEmail(ctx, args[0])
				if err != nil {
					return fmt.Errorf("promote %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", u.Email, u.ID, u.Role)
				return nil
			})
		},
	})
	return user
}

func tipCmd(load Loader) *cobra.Command {
	tip := &cobra.Command{Use: "tip", Short: "Manage the daily tip"}
	tip.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Generate a new tip for today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd, load, func(ctx context.Context, b *Backend) error {
				t, err := b.Tips.Refresh(ctx)
				if err != nil {
					return fmt.Errorf("refresh tip: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", t.Date, t.Tip)
				return nil
			})
		},
	})
	return tip
}
