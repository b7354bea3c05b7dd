package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"fintechjobs-engine/internal/dedup"
	"fintechjobs-engine/internal/domain"
)

// InsertPosition stores p unless a row with the same origin and dedup key
// exists. added reports whether a new row was written.
func InsertPosition(ctx context.Context, db *sql.DB, p domain.Position) (added bool, err error) {
	if p.Origin == "" {
		p.Origin = domain.OriginObserved
	}
	if p.ApplyMethod == "" {
		p.ApplyMethod = domain.ApplyMethodFor(p.HREmails, p.ApplyLinks, p.URL)
	}
	if p.ScrapedAt.IsZero() {
		p.ScrapedAt = time.Now().UTC()
	}
	k := dedup.MakeKey(p.Company, p.Title)

	verified := 0
	if p.EmailVerified {
		verified = 1
	}

	res, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO positions
(company, title, dedup_company, dedup_title, location, description, url,
 apply_links, emails, hr_emails, phones, email_verified, apply_method, source, origin, scraped_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
		p.Company, p.Title, k.Company, k.Title,
		p.Location, p.Description, p.URL,
		jsonList(p.ApplyLinks), jsonList(p.Emails), jsonList(p.HREmails), jsonList(p.Phones),
		verified, string(p.ApplyMethod), p.Source, string(p.Origin),
		p.ScrapedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert position %q/%q: %w", p.Company, p.Title, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// LoadDedupKeys returns the dedup keys of every stored observed position,
// for seeding a run's Deduplicator.
func LoadDedupKeys(ctx context.Context, db *sql.DB) ([]dedup.Key, error) {
	rows, err := db.QueryContext(ctx, `
SELECT dedup_company, dedup_title FROM positions WHERE origin = ?;
`, string(domain.OriginObserved))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []dedup.Key
	for rows.Next() {
		var k dedup.Key
		if err := rows.Scan(&k.Company, &k.Title); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// CleanupOld deletes positions scraped before now-maxAge.
func CleanupOld(ctx context.Context, db *sql.DB, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge).Format(time.RFC3339)
	res, err := db.ExecContext(ctx, `DELETE FROM positions WHERE scraped_at < ?;`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func jsonList(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}
