package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintechjobs-engine/internal/dedup"
	"fintechjobs-engine/internal/domain"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func samplePosition() domain.Position {
	return domain.Position{
		Company:       "Paytm",
		Title:         "Backend Developer - Fresher",
		Location:      "Noida",
		URL:           "https://jobs.lever.co/paytm/1",
		Emails:        []string{"careers@paytm.com", "someone@gmail.com"},
		HREmails:      []string{"careers@paytm.com"},
		Phones:        []string{"9876543210"},
		EmailVerified: true,
		Source:        "lever",
		Origin:        domain.OriginObserved,
		ScrapedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db.Pool))

	var v int
	require.NoError(t, db.Pool.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v))
	assert.Equal(t, 1, v)
}

func TestInsertPositionIgnoresSameKey(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	added, err := InsertPosition(ctx, db.Pool, samplePosition())
	require.NoError(t, err)
	assert.True(t, added)

	again := samplePosition()
	again.Company = "  PAYTM "
	again.Title = "backend   developer - FRESHER"
	added, err = InsertPosition(ctx, db.Pool, again)
	require.NoError(t, err)
	assert.False(t, added)

	// synthetic rows live beside observed ones
	synth := samplePosition()
	synth.Origin = domain.OriginSynthetic
	added, err = InsertPosition(ctx, db.Pool, synth)
	require.NoError(t, err)
	assert.True(t, added)

	all, err := ListPositions(ctx, db.Pool, ListOpts{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	observed, err := ListPositions(ctx, db.Pool, ListOpts{Origin: domain.OriginObserved})
	require.NoError(t, err)
	require.Len(t, observed, 1)

	got := observed[0]
	assert.Equal(t, "Paytm", got.Company)
	assert.Equal(t, []string{"careers@paytm.com"}, got.HREmails)
	assert.Equal(t, []string{"9876543210"}, got.Phones)
	assert.True(t, got.EmailVerified)
	assert.Equal(t, domain.ApplyBoth, got.ApplyMethod)
	assert.Equal(t, domain.OriginObserved, got.Origin)
	assert.True(t, got.ScrapedAt.Equal(samplePosition().ScrapedAt))
}

func TestListPositionsVerifiedOnly(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	_, err := InsertPosition(ctx, db.Pool, samplePosition())
	require.NoError(t, err)

	p := samplePosition()
	p.Title = "SDE 1"
	p.HREmails = nil
	p.EmailVerified = false
	p.ApplyMethod = ""
	_, err = InsertPosition(ctx, db.Pool, p)
	require.NoError(t, err)

	got, err := ListPositions(ctx, db.Pool, ListOpts{VerifiedOnly: true, Sort: "title"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Backend Developer - Fresher", got[0].Title)

	all, err := ListPositions(ctx, db.Pool, ListOpts{Sort: "title"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, domain.ApplyPortal, all[1].ApplyMethod)
	assert.Empty(t, all[1].HREmails)
}

func TestLoadDedupKeysSeedsDeduplicator(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	_, err := InsertPosition(ctx, db.Pool, samplePosition())
	require.NoError(t, err)
	synth := samplePosition()
	synth.Title = "Sample Role"
	synth.Origin = domain.OriginSynthetic
	_, err = InsertPosition(ctx, db.Pool, synth)
	require.NoError(t, err)

	keys, err := LoadDedupKeys(ctx, db.Pool)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	d := dedup.New()
	d.Seed(keys)
	assert.True(t, d.IsDuplicate("paytm", "Backend Developer - Fresher"))
	assert.False(t, d.IsDuplicate("Paytm", "Sample Role"))
}

func TestCleanupOld(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	old := samplePosition()
	old.ScrapedAt = time.Now().UTC().Add(-60 * 24 * time.Hour)
	_, err := InsertPosition(ctx, db.Pool, old)
	require.NoError(t, err)

	fresh := samplePosition()
	fresh.Title = "SDE Intern"
	fresh.ScrapedAt = time.Now().UTC()
	_, err = InsertPosition(ctx, db.Pool, fresh)
	require.NoError(t, err)

	n, err := CleanupOld(ctx, db.Pool, 30*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	left, err := ListPositions(ctx, db.Pool, ListOpts{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "SDE Intern", left[0].Title)
}
