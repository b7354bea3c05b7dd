package main

import (
	"fmt"
	"time"

	"fintechjobs-engine/internal/store"

	"github.com/spf13/cobra"
)

func newPruneCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune [--older-than 720h]",
		Short: "Delete stored positions scraped before the given age.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			e, err := loadEnv()
			if err != nil {
				return err
			}
			unlock, err := lockDataDir(e.DataDir)
			if err != nil {
				return err
			}
			defer unlock()

			db, err := store.Open(cmd.Context(), e.dbPath())
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := store.CleanupOld(cmd.Context(), db.Pool, olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d positions\n", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "age cutoff")
	return cmd
}
