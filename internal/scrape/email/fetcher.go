// Package email_scrape turns recruiter and job-alert mails from an IMAP
// mailbox into job candidates.
package email_scrape

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"fintechjobs-engine/internal/config"
	"fintechjobs-engine/internal/domain"
	"fintechjobs-engine/internal/scrape/types"
	"fintechjobs-engine/internal/scrape/util"
	"fintechjobs-engine/internal/secrets"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

const (
	lookback     = 90 * 24 * time.Hour
	maxDescChars = 4000
	maxTitleLen  = 140
)

type EmailFetcher struct {
	Cfg config.Config
	// Password defaults to the keychain/env lookup.
	Password func() (string, error)

	dial func(ctx context.Context, addr, username, password string) (*imapclient.Client, error)
}

func New(cfg config.Config) *EmailFetcher {
	return &EmailFetcher{Cfg: cfg}
}

func (f *EmailFetcher) Name() string { return "email" }

func (f *EmailFetcher) addr() string {
	host := strings.TrimSpace(f.Cfg.Email.IMAPHost)
	if strings.Contains(host, ":") {
		return host
	}
	port := f.Cfg.Email.IMAPPort
	if port == 0 {
		port = 993
	}
	return fmt.Sprintf("%s:%d", host, port)
}

func (f *EmailFetcher) password() (string, error) {
	if f.Password != nil {
		return f.Password()
	}
	return secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(f.Cfg))
}

// login scopes ctx to one session; the returned cancel releases the close
// watcher DialAndLogin starts even when ctx outlives the run.
func (f *EmailFetcher) login(ctx context.Context, pw string) (*imapclient.Client, context.CancelFunc, error) {
	dial := f.dial
	if dial == nil {
		dial = DialAndLogin
	}
	ctx, cancel := context.WithCancel(ctx)
	c, err := dial(ctx, f.addr(), f.Cfg.Email.Username, pw)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return c, cancel, nil
}

func (f *EmailFetcher) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	res := types.ScrapeResult{Source: f.Name()}
	if f.Cfg.Email.IMAPHost == "" || f.Cfg.Email.Username == "" {
		return res, fmt.Errorf("email enabled but missing imap_host/username")
	}
	pw, err := f.password()
	if err != nil {
		return res, err
	}

	c, done, err := f.login(ctx, pw)
	if err != nil {
		return res, err
	}
	defer done()
	defer LogoutAndClose(c)

	if err := SelectMailbox(c, f.Cfg.Email.Mailbox); err != nil {
		return res, err
	}
	msgs, err := FetchUnseen(ctx, c, f.Cfg.Email.MaxMessages, time.Now().Add(-lookback))
	if err != nil {
		return res, err
	}

	var used []imap.UID
	for _, m := range msgs {
		cands, ok := f.Candidates(m)
		if !ok {
			continue
		}
		used = append(used, m.UID)
		res.Candidates = append(res.Candidates, cands...)
	}
	log.Printf("[email] messages=%d matched=%d candidates=%d", len(msgs), len(used), len(res.Candidates))

	if f.Cfg.Email.MarkSeen && len(used) > 0 {
		res.Finalize = func(ctx context.Context) error {
			return f.markSeen(ctx, pw, used)
		}
	}
	return res, nil
}

// markSeen runs on a fresh connection since Fetch already logged out.
func (f *EmailFetcher) markSeen(ctx context.Context, pw string, uids []imap.UID) error {
	c, done, err := f.login(ctx, pw)
	if err != nil {
		return err
	}
	defer done()
	defer LogoutAndClose(c)
	if err := SelectMailbox(c, f.Cfg.Email.Mailbox); err != nil {
		return err
	}
	if err := MarkSeen(c, uids); err != nil {
		return err
	}
	log.Printf("[email] marked %d messages seen", len(uids))
	return nil
}

// Candidates converts one message. ok is false when the subject filter
// rejects it.
func (f *EmailFetcher) Candidates(m Message) (cands []domain.JobCandidate, ok bool) {
	p := ParseRFC822(m.Raw)
	if p.Subject == "" {
		p.Subject = decodeRFC2047(m.Subject)
	}
	if p.From == "" {
		p.From = m.From
	}
	if p.Date.IsZero() {
		p.Date = m.Date
	}
	if subs := f.Cfg.Email.SearchSubjectAny; len(subs) > 0 && !containsAnyCI(p.Subject, subs) {
		return nil, false
	}

	date := p.Date
	if date.IsZero() {
		date = time.Now()
	}

	if looksLikeLinkedInJobAlert(p.From, p.Subject, p.HTML) && p.HTML != "" {
		jobs, err := ParseLinkedInJobAlertHTML(p.HTML)
		if err != nil {
			log.Printf("[email] linkedin alert parse: %v", err)
		}
		for _, j := range jobs {
			company := j.Company
			if co, found := f.Cfg.CompanyByName(company); found {
				company = co.Name
			}
			cands = append(cands, domain.JobCandidate{
				Title:          j.Title,
				Company:        company,
				Description:    strings.TrimSpace(j.Company + " · " + j.Location),
				RawContactText: strings.Join([]string{j.Title, company, j.Location}, " "),
				Location:       j.Location,
				URL:            j.URL,
				ApplyLinks:     []string{j.URL},
				Source:         f.Name(),
				Origin:         domain.OriginObserved,
				PostedAt:       &date,
			})
		}
		if len(cands) > 0 {
			return cands, true
		}
	}

	var links []string
	for _, l := range p.Links() {
		if util.IsValidApplyLink(l) {
			links = append(links, l)
		}
	}
	c := domain.JobCandidate{
		Title:       normalizeSubjectTitle(p.Subject),
		Company:     f.resolveCompany(p.From, p.Subject),
		Description: util.Truncate(util.CleanText(p.Text), maxDescChars),
		// the sender address is itself a contact
		RawContactText: strings.Join([]string{p.Subject, p.Text, p.From}, " "),
		ApplyLinks:     links,
		Source:         f.Name(),
		Origin:         domain.OriginObserved,
		PostedAt:       &date,
	}
	if len(links) > 0 {
		c.URL = links[0]
	}
	return []domain.JobCandidate{c}, true
}

// resolveCompany prefers the sender domain, then a configured company named
// in the subject, then the sender's display name.
func (f *EmailFetcher) resolveCompany(from, subject string) string {
	addr := from
	if a, err := mail.ParseAddress(from); err == nil {
		addr = a.Address
	}
	if at := strings.LastIndex(addr, "@"); at >= 0 {
		if co, ok := f.Cfg.CompanyByDomain(strings.Trim(addr[at+1:], "> ")); ok {
			return co.Name
		}
	}
	ls := strings.ToLower(subject)
	for _, co := range f.Cfg.Companies {
		if n := strings.ToLower(strings.TrimSpace(co.Name)); n != "" && strings.Contains(ls, n) {
			return co.Name
		}
	}
	return guessCompanyFromFrom(from)
}

func containsAnyCI(s string, any []string) bool {
	ls := strings.ToLower(s)
	for _, a := range any {
		a = strings.TrimSpace(a)
		if a != "" && strings.Contains(ls, strings.ToLower(a)) {
			return true
		}
	}
	return false
}

func normalizeSubjectTitle(subj string) string {
	s := util.CleanText(subj)
	for again := true; again; {
		again = false
		for _, p := range []string{"fwd:", "fw:", "re:"} {
			if strings.HasPrefix(strings.ToLower(s), p) {
				s = strings.TrimSpace(s[len(p):])
				again = true
			}
		}
	}
	return util.Truncate(s, maxTitleLen)
}

func guessCompanyFromFrom(from string) string {
	from = strings.TrimSpace(from)
	if a, err := mail.ParseAddress(from); err == nil {
		if a.Name != "" {
			return a.Name
		}
		from = a.Address
	}
	if at := strings.LastIndex(from, "@"); at >= 0 {
		d := strings.Trim(from[at+1:], "> ")
		if first := strings.Split(d, ".")[0]; first != "" {
			return strings.ToUpper(first[:1]) + first[1:]
		}
	}
	return "Unknown"
}
