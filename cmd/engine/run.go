package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"

	"fintechjobs-engine/internal/config"
	"fintechjobs-engine/internal/scrape"
	"fintechjobs-engine/internal/scrape/types"
	"fintechjobs-engine/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var fresh bool
	cmd := &cobra.Command{
		Use:   "run [--fresh]",
		Short: "Scrape every enabled source once and store the relevant positions.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			if err := config.Validate(e.Cfg); err != nil {
				return err
			}

			db, err := store.Open(cmd.Context(), e.dbPath())
			if err != nil {
				return err
			}
			defer db.Close()

			sum, err := runLocked(cmd.Context(), e, db, scrape.RunOptions{Fresh: fresh})
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fresh, "fresh", false, "do not treat stored positions as already seen")
	return cmd
}

// runLocked is one run under the data dir lock; serve uses it too.
func runLocked(ctx context.Context, e env, db *store.DB, opts scrape.RunOptions) (types.RunSummary, error) {
	unlock, err := lockDataDir(e.DataDir)
	if err != nil {
		return types.RunSummary{}, err
	}
	defer unlock()

	sum, err := scrape.RunOnce(ctx, db.Pool, e.Cfg, opts)
	if err != nil {
		return sum, fmt.Errorf("run: %w", err)
	}
	log.Printf("[run] kept=%d added=%d synthetic=%v", sum.Kept, sum.Added, sum.Synthetic)
	return sum, nil
}

func printSummary(w io.Writer, sum types.RunSummary) {
	t := newTable(w)
	t.SetTitle("Run summary")
	t.AppendHeader(table.Row{"Source", "Candidates"})
	for _, name := range sortedKeys(sum.Sources) {
		t.AppendRow(table.Row{name, sum.Sources[name]})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"kept", sum.Kept})
	t.AppendRow(table.Row{"added", sum.Added})
	for _, reason := range sortedKeys(sum.Rejected) {
		t.AppendRow(table.Row{"rejected: " + reason, sum.Rejected[reason]})
	}
	t.Render()

	if sum.Synthetic {
		fmt.Fprintln(w, "NOTE: no observed position was kept; stored positions include synthetic samples (origin=synthetic).")
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
