package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"fintechjobs-engine/internal/domain"
)

type ListOpts struct {
	Sort         string // date | company | title | verified
	Origin       domain.Origin
	VerifiedOnly bool
	Limit        int
}

func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1 ----

	if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS positions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  company TEXT NOT NULL,
  title TEXT NOT NULL,
  dedup_company TEXT NOT NULL,
  dedup_title TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  url TEXT NOT NULL DEFAULT '',
  apply_links TEXT NOT NULL DEFAULT '[]',
  emails TEXT NOT NULL DEFAULT '[]',
  hr_emails TEXT NOT NULL DEFAULT '[]',
  phones TEXT NOT NULL DEFAULT '[]',
  email_verified INTEGER NOT NULL DEFAULT 0,
  apply_method TEXT NOT NULL DEFAULT 'none',
  source TEXT NOT NULL DEFAULT '',
  origin TEXT NOT NULL DEFAULT 'observed',
  scraped_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	// synthetic rows must never shadow an observed one, so origin is part of the key
	if _, err := tx.ExecContext(ctx, `
CREATE UNIQUE INDEX IF NOT EXISTS idx_positions_dedup
ON positions(origin, dedup_company, dedup_title);
`); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
CREATE INDEX IF NOT EXISTS idx_positions_scraped_at
ON positions(scraped_at);
`); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}

func ListPositions(ctx context.Context, db *sql.DB, opts ListOpts) ([]domain.Position, error) {
	if opts.Limit <= 0 || opts.Limit > 5000 {
		opts.Limit = 500
	}

	// whitelist sort columns (prevents SQL injection)
	order := map[string]string{
		"date":     "scraped_at DESC, id DESC",
		"company":  "company ASC, title ASC",
		"title":    "title ASC, company ASC",
		"verified": "email_verified DESC, company ASC",
	}[opts.Sort]
	if order == "" {
		order = "email_verified DESC, company ASC"
	}

	where := "WHERE 1=1"
	var args []any
	if opts.Origin != "" {
		where += " AND origin = ?"
		args = append(args, string(opts.Origin))
	}
	if opts.VerifiedOnly {
		where += " AND email_verified = 1"
	}
	args = append(args, opts.Limit)

	query := fmt.Sprintf(`
SELECT id, company, title, location, description, url, apply_links, emails, hr_emails, phones,
       email_verified, apply_method, source, origin, scraped_at
FROM positions
%s
ORDER BY %s
LIMIT ?;
`, where, order)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Position
	for rows.Next() {
		var (
			p                               domain.Position
			links, emails, hrEmails, phones string
			verified                        int
			method, origin, scrapedAt       string
		)
		if err := rows.Scan(
			&p.ID,
			&p.Company,
			&p.Title,
			&p.Location,
			&p.Description,
			&p.URL,
			&links,
			&emails,
			&hrEmails,
			&phones,
			&verified,
			&method,
			&p.Source,
			&origin,
			&scrapedAt,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(links), &p.ApplyLinks)
		_ = json.Unmarshal([]byte(emails), &p.Emails)
		_ = json.Unmarshal([]byte(hrEmails), &p.HREmails)
		_ = json.Unmarshal([]byte(phones), &p.Phones)
		p.EmailVerified = verified != 0
		p.ApplyMethod = domain.ApplyMethod(method)
		p.Origin = domain.Origin(origin)
		p.ScrapedAt, _ = time.Parse(time.RFC3339, scrapedAt)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
