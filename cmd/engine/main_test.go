package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fintechjobs-engine/internal/config"
	"fintechjobs-engine/internal/domain"
	"fintechjobs-engine/internal/secrets"
	"fintechjobs-engine/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(envDataDir, "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// offlineDataDir bootstraps a data dir whose config scrapes nothing and
// falls back to the synthetic samples.
func offlineDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path, err := config.EnsureUserConfig(dir)
	require.NoError(t, err)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	cfg.Sources.Careers.Enabled = false
	cfg.Sources.Greenhouse.Enabled = false
	cfg.Sources.Lever.Enabled = false
	cfg.Email.Enabled = false
	cfg.Run.SyntheticFallback = true
	cfg.Outreach.FromAddress = "me@example.com"
	require.NoError(t, config.SaveAtomic(path, cfg))
	return dir
}

func TestRun_SyntheticFallbackIsTagged(t *testing.T) {
	dir := offlineDataDir(t)

	out, err := execute(t, "", "run", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(out), "run summary")
	assert.Contains(t, out, "origin=synthetic")

	out, err = execute(t, "", "positions", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(out), "0 positions", "observed is the default view")

	out, err = execute(t, "", "positions", "--data-dir", dir, "--origin", "synthetic", "--csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Greater(t, len(lines), 1)
	assert.True(t, strings.HasPrefix(strings.ToLower(lines[0]), "id,origin,company,title"), lines[0])
	for _, l := range lines[1:] {
		assert.Contains(t, l, ",synthetic,")
	}
}

func TestRun_LockedDataDir(t *testing.T) {
	dir := offlineDataDir(t)
	unlock, err := lockDataDir(dir)
	require.NoError(t, err)
	defer unlock()

	_, err = execute(t, "", "run", "--data-dir", dir)
	require.ErrorIs(t, err, errLocked)
}

func TestPositions_BadOrigin(t *testing.T) {
	_, err := execute(t, "", "positions", "--data-dir", t.TempDir(), "--origin", "scraped")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--origin")
}

func TestDrafts_WritesVerifiedOnly(t *testing.T) {
	dir := offlineDataDir(t)

	ctx := context.Background()
	db, err := store.Open(ctx, filepath.Join(dir, dbFile))
	require.NoError(t, err)
	for _, p := range []domain.Position{
		{Company: "Paytm", Title: "Backend Developer", HREmails: []string{"careers@paytm.com"}, EmailVerified: true},
		{Company: "CRED", Title: "SDE Intern"},
	} {
		_, err := store.InsertPosition(ctx, db.Pool, p)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	out, err := execute(t, "", "drafts", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 drafts in")

	files, err := filepath.Glob(filepath.Join(dir, "drafts", "*.eml"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	raw, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "careers@paytm.com")
	assert.Contains(t, string(raw), "Backend Developer")
}

func TestPrune(t *testing.T) {
	dir := offlineDataDir(t)
	out, err := execute(t, "", "prune", "--data-dir", dir, "--older-than", "1h")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 0 positions")

	_, err = execute(t, "", "prune", "--data-dir", dir, "--older-than", "0s")
	require.Error(t, err)
}

func TestConfigCheck(t *testing.T) {
	dir := offlineDataDir(t)
	out, err := execute(t, "", "config", "check", "--data-dir", dir, "--write")
	require.NoError(t, err)
	assert.Contains(t, out, "ok (")
	assert.FileExists(t, filepath.Join(dir, "config.yml.bak"))

	bad := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("companies:\n  - name: X\n    hr_patterns: ['(']\n"), 0o644))
	out, err = execute(t, "", "config", "check", "--data-dir", dir, "--config", bad)
	require.Error(t, err)
	assert.Contains(t, out, "error:")
}

func TestSecrets_SetFromStdinAndDelete(t *testing.T) {
	keyring.MockInit()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("email:\n  username: me@example.com\n  imap_host: imap.example.com\n"), 0o644))

	out, err := execute(t, "hunter2\n", "secrets", "set-imap", "--data-dir", dir, "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "fintechjobs:imap:me@example.com@imap.example.com")

	pw, err := secrets.GetIMAPPassword("fintechjobs:imap:me@example.com@imap.example.com")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)

	_, err = execute(t, "", "secrets", "delete-imap", "--data-dir", dir, "--config", cfgPath)
	require.NoError(t, err)
	t.Setenv(secrets.EnvIMAPPassword, "")
	_, err = secrets.GetIMAPPassword("fintechjobs:imap:me@example.com@imap.example.com")
	assert.ErrorIs(t, err, secrets.ErrNoPassword)
}

func TestSecrets_RequiresEmailConfig(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()
	_, err := execute(t, "pw\n", "secrets", "set-imap", "--data-dir", dir)
	require.Error(t, err)
}

func TestReadPassword(t *testing.T) {
	pw, err := readPassword(strings.NewReader("s3cret\r\nignored"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)

	pw, err = readPassword(strings.NewReader("no-newline"))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", pw)

	_, err = readPassword(strings.NewReader("\n"))
	require.Error(t, err)
}
