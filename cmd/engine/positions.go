package main

import (
	"fmt"
	"io"
	"strings"

	"fintechjobs-engine/internal/contact"
	"fintechjobs-engine/internal/domain"
	"fintechjobs-engine/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type positionsFlags struct {
	origin   string
	sort     string
	limit    int
	verified bool
	csv      bool
}

func newPositionsCmd() *cobra.Command {
	var f positionsFlags
	cmd := &cobra.Command{
		Use:   "positions [--origin observed|synthetic|all] [--csv]",
		Short: "List stored positions.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.listOpts()
			if err != nil {
				return err
			}
			e, err := loadEnv()
			if err != nil {
				return err
			}
			db, err := store.Open(cmd.Context(), e.dbPath())
			if err != nil {
				return err
			}
			defer db.Close()

			ps, err := store.ListPositions(cmd.Context(), db.Pool, opts)
			if err != nil {
				return err
			}
			renderPositions(cmd.OutOrStdout(), ps, f.csv)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.origin, "origin", "observed", "observed, synthetic or all")
	cmd.Flags().StringVar(&f.sort, "sort", "", "date, company, title or verified (default verified)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "max rows (default 500)")
	cmd.Flags().BoolVar(&f.verified, "verified", false, "only positions with a verified HR email")
	cmd.Flags().BoolVar(&f.csv, "csv", false, "print CSV instead of a table")
	return cmd
}

func (f positionsFlags) listOpts() (store.ListOpts, error) {
	opts := store.ListOpts{Sort: f.sort, Limit: f.limit, VerifiedOnly: f.verified}
	switch strings.ToLower(strings.TrimSpace(f.origin)) {
	case "", "observed":
		opts.Origin = domain.OriginObserved
	case "synthetic":
		opts.Origin = domain.OriginSynthetic
	case "all":
	default:
		return opts, fmt.Errorf("--origin must be observed, synthetic or all, got %q", f.origin)
	}
	return opts, nil
}

func renderPositions(w io.Writer, ps []domain.Position, csv bool) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Origin", "Company", "Title", "Location", "HR Emails", "Phones", "Apply", "Verified", "Link"})
	for _, p := range ps {
		link := p.URL
		if len(p.ApplyLinks) > 0 {
			link = p.ApplyLinks[0]
		}
		t.AppendRow(table.Row{
			p.ID,
			p.Origin,
			p.Company,
			p.Title,
			p.Location,
			strings.Join(p.HREmails, " "),
			strings.Join(contact.CanonicalPhones(p.Phones), " "),
			p.ApplyMethod,
			yesNo(p.EmailVerified),
			link,
		})
	}

	if csv {
		t.RenderCSV()
		return
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: 48},
		{Name: "Link", WidthMax: 60},
	})
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d positions", len(ps))})
	t.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
