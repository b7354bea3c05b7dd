package main

import (
	"fmt"
	"path/filepath"

	"fintechjobs-engine/internal/domain"
	"fintechjobs-engine/internal/outreach"
	"fintechjobs-engine/internal/store"

	"github.com/spf13/cobra"
)

func newDraftsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "Write .eml application drafts for positions with a verified HR email. Nothing is sent.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			comp, err := outreach.NewComposer(e.Cfg)
			if err != nil {
				return err
			}
			db, err := store.Open(cmd.Context(), e.dbPath())
			if err != nil {
				return err
			}
			defer db.Close()

			ps, err := store.ListPositions(cmd.Context(), db.Pool, store.ListOpts{
				Origin:       domain.OriginObserved,
				VerifiedOnly: true,
				Limit:        limit,
			})
			if err != nil {
				return err
			}

			dir := e.Cfg.Outreach.DraftsDir
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(e.DataDir, dir)
			}
			written, err := comp.WriteDrafts(dir, ps)
			if err != nil {
				return err
			}
			for _, p := range written {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d drafts in %s\n", len(written), dir)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "max positions (default 500)")
	return cmd
}
