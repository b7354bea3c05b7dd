package outreach

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintechjobs-engine/internal/config"
	"fintechjobs-engine/internal/domain"
)

func testConfig() config.Config {
	var cfg config.Config
	cfg.Outreach.FromName = "Asha Rao"
	cfg.Outreach.FromAddress = "asha@example.com"
	cfg.Outreach.Subject = "Application for {{.Title}} at {{.Company}} - {{.FromName}}"
	cfg.Outreach.Body = "Dear Hiring Manager,\nI would like to apply for {{.Title}}.{{if .ApplyLink}} Applied via {{.ApplyLink}}.{{end}}\n{{.FromName}}\n"
	return cfg
}

func position() domain.Position {
	return domain.Position{
		ID:         7,
		Company:    "Paytm",
		Title:      "SDE 1 / Backend",
		HREmails:   []string{"careers@paytm.com", "hr@paytm.com"},
		ApplyLinks: []string{"https://jobs.lever.co/paytm/1"},
	}
}

func TestDraft(t *testing.T) {
	c, err := NewComposer(testConfig())
	require.NoError(t, err)

	m, err := c.Draft(position())
	require.NoError(t, err)
	assert.Equal(t, []string{"careers@paytm.com", "hr@paytm.com"}, m.To)
	assert.Equal(t, "Application for SDE 1 / Backend at Paytm - Asha Rao", m.Subject)
	assert.Equal(t, `"Asha Rao" <asha@example.com>`, m.From)
	assert.Contains(t, string(m.Text), "Applied via https://jobs.lever.co/paytm/1.")

	raw, err := m.Bytes()
	require.NoError(t, err)
	s := string(raw)
	assert.Contains(t, s, "Subject: Application for SDE 1 / Backend at Paytm - Asha Rao")
	assert.Contains(t, s, "careers@paytm.com")
	assert.Contains(t, s, "X-Unsent: 1")
}

func TestDraftWithoutRecipients(t *testing.T) {
	c, err := NewComposer(testConfig())
	require.NoError(t, err)
	p := position()
	p.HREmails = nil
	_, err = c.Draft(p)
	require.ErrorIs(t, err, ErrNoRecipient)
}

func TestNewComposerBadTemplate(t *testing.T) {
	cfg := testConfig()
	cfg.Outreach.Subject = "{{.Title"
	_, err := NewComposer(cfg)
	require.Error(t, err)
}

func TestDraftUnknownField(t *testing.T) {
	cfg := testConfig()
	cfg.Outreach.Body = "{{.Salary}}"
	c, err := NewComposer(cfg)
	require.NoError(t, err)
	_, err = c.Draft(position())
	require.Error(t, err)
}

func TestWriteDrafts(t *testing.T) {
	c, err := NewComposer(testConfig())
	require.NoError(t, err)

	noHR := position()
	noHR.ID = 8
	noHR.HREmails = nil

	dir := filepath.Join(t.TempDir(), "drafts")
	paths, err := c.WriteDrafts(dir, []domain.Position{position(), noHR})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(dir, "7-paytm-sde-1-backend.eml"), paths[0])

	b, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "hr@paytm.com"))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "cred-app-developer-react-native.eml",
		FileName(domain.Position{Company: "CRED", Title: "App Developer - React Native"}))
	long := FileName(domain.Position{Company: "X", Title: strings.Repeat("ab ", 80)})
	assert.LessOrEqual(t, len(long), 104)
	assert.False(t, strings.HasSuffix(strings.TrimSuffix(long, ".eml"), "-"))
}
