// Package outreach renders application emails for positions with verified
// HR addresses and writes them as .eml drafts. Nothing is ever sent.
package outreach

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"fintechjobs-engine/internal/config"
	"fintechjobs-engine/internal/domain"

	"github.com/jordan-wright/email"
)

var ErrNoRecipient = errors.New("position has no verified HR email")

// Data is what subject and body templates see.
type Data struct {
	Title     string
	Company   string
	Location  string
	FromName  string
	ApplyLink string
}

type Composer struct {
	subject  *template.Template
	body     *template.Template
	fromName string
	fromAddr string
}

func NewComposer(cfg config.Config) (*Composer, error) {
	o := cfg.Outreach
	subj, err := template.New("subject").Option("missingkey=error").Parse(o.Subject)
	if err != nil {
		return nil, fmt.Errorf("outreach.subject: %w", err)
	}
	body, err := template.New("body").Option("missingkey=error").Parse(o.Body)
	if err != nil {
		return nil, fmt.Errorf("outreach.body: %w", err)
	}
	return &Composer{
		subject:  subj,
		body:     body,
		fromName: strings.TrimSpace(o.FromName),
		fromAddr: strings.TrimSpace(o.FromAddress),
	}, nil
}

func dataFor(p domain.Position, fromName string) Data {
	link := p.URL
	if len(p.ApplyLinks) > 0 {
		link = p.ApplyLinks[0]
	}
	return Data{
		Title:     p.Title,
		Company:   p.Company,
		Location:  p.Location,
		FromName:  fromName,
		ApplyLink: link,
	}
}

// Draft builds the message addressed to p's verified HR emails.
func (c *Composer) Draft(p domain.Position) (*email.Email, error) {
	if len(p.HREmails) == 0 {
		return nil, ErrNoRecipient
	}
	d := dataFor(p, c.fromName)

	var subj, body bytes.Buffer
	if err := c.subject.Execute(&subj, d); err != nil {
		return nil, fmt.Errorf("render subject: %w", err)
	}
	if err := c.body.Execute(&body, d); err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}

	m := email.NewEmail()
	if c.fromAddr != "" {
		m.From = (&mail.Address{Name: c.fromName, Address: c.fromAddr}).String()
	}
	m.To = append([]string(nil), p.HREmails...)
	m.Subject = strings.Join(strings.Fields(subj.String()), " ")
	m.Text = body.Bytes()
	// mail clients open X-Unsent messages as editable drafts
	m.Headers.Set("X-Unsent", "1")
	return m, nil
}

// WriteDrafts writes one .eml per position with HR emails into dir and
// returns the written paths. Positions without recipients are skipped.
func (c *Composer) WriteDrafts(dir string, positions []domain.Position) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var written []string
	for _, p := range positions {
		m, err := c.Draft(p)
		if errors.Is(err, ErrNoRecipient) {
			continue
		}
		if err != nil {
			return written, fmt.Errorf("%s / %s: %w", p.Company, p.Title, err)
		}
		raw, err := m.Bytes()
		if err != nil {
			return written, fmt.Errorf("%s / %s: encode: %w", p.Company, p.Title, err)
		}

		path := filepath.Join(dir, FileName(p))
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	log.Printf("[outreach] wrote %d drafts to %s", len(written), dir)
	return written, nil
}

// FileName is <id>-<company>-<title>.eml, slugged.
func FileName(p domain.Position) string {
	name := slug(p.Company) + "-" + slug(p.Title)
	if len(name) > 100 {
		name = strings.TrimRight(name[:100], "-")
	}
	if p.ID > 0 {
		name = fmt.Sprintf("%d-%s", p.ID, name)
	}
	return name + ".eml"
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
