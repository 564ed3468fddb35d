package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables, indexes and the overlap constraint",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if a.DB == nil {
				return fmt.Errorf("migrate needs the postgres store")
			}
			if err := a.Migrate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

// reconcileCmd runs one pass outside the server, e.g. from an external
// cron. Running it next to a live server is safe.
func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Complete elapsed appointments and update client counters once",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			res, err := a.Reconciler.Run(ctx, a.Clock())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "completed=%d counted=%d failed=%d\n", res.Completed, res.Counted, res.Failed)
			return nil
		},
	}
}
