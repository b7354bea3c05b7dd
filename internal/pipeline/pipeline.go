// Package pipeline runs one candidate through title checks, relevance
// classification, deduplication and contact extraction.
package pipeline

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"fintechjobs-engine/internal/config"
	"fintechjobs-engine/internal/contact"
	"fintechjobs-engine/internal/dedup"
	"fintechjobs-engine/internal/domain"
	"fintechjobs-engine/internal/relevance"
)

type Verdict struct {
	Kept     bool
	Reason   string // empty when kept
	Decision domain.RelevanceDecision
}

type Pipeline struct {
	classifier relevance.Classifier
	dedup      *dedup.Deduplicator
	minTitle   int
	maxTitle   int

	// company name (lowercased) -> validator with that company's patterns
	validators map[string]*contact.HRValidator
	generic    *contact.HRValidator

	now   func() time.Time
	stats stats
}

// New builds a pipeline from cfg. A nil seen-set starts the run empty.
func New(cfg config.Config, seen *dedup.Deduplicator) (*Pipeline, error) {
	cls, err := ClassifierFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	if seen == nil {
		seen = dedup.New()
	}

	p := &Pipeline{
		classifier: cls,
		dedup:      seen,
		minTitle:   cfg.Filters.MinTitleLength,
		maxTitle:   cfg.Filters.MaxTitleLength,
		validators: make(map[string]*contact.HRValidator),
		generic:    &contact.HRValidator{},
		now:        time.Now,
		stats:      stats{rejected: map[string]int{}},
	}
	for _, co := range cfg.Companies {
		v, err := contact.NewHRValidator(co.HRPatterns)
		if err != nil {
			return nil, fmt.Errorf("company %q: %w", co.Name, err)
		}
		p.validators[strings.ToLower(strings.TrimSpace(co.Name))] = v
	}
	return p, nil
}

func ClassifierFromConfig(cfg config.Config) (relevance.Classifier, error) {
	policy, err := relevance.ParsePolicy(cfg.Filters.Policy)
	if err != nil {
		return relevance.Classifier{}, err
	}

	fields := func(names []string) ([]relevance.Field, error) {
		out := make([]relevance.Field, 0, len(names))
		for _, n := range names {
			f, err := relevance.ParseField(n)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
		return out, nil
	}

	scope := relevance.DefaultScope()
	s := cfg.Filters.Scope
	for _, x := range []struct {
		names []string
		dst   *[]relevance.Field
	}{
		{s.Domain, &scope.Domain},
		{s.Seniority, &scope.Seniority},
		{s.Role, &scope.Role},
		{s.Exclude, &scope.Exclude},
	} {
		if len(x.names) == 0 {
			continue
		}
		fs, err := fields(x.names)
		if err != nil {
			return relevance.Classifier{}, err
		}
		*x.dst = fs
	}

	tables := relevance.Tables{
		Domain:    cfg.Keywords.Domain,
		Seniority: cfg.Keywords.Seniority,
		Role:      cfg.Keywords.Role,
		Exclude:   cfg.Keywords.Exclude,
	}
	return relevance.New(tables, scope, policy), nil
}

// Seen exposes the run's seen-set.
func (p *Pipeline) Seen() *dedup.Deduplicator { return p.dedup }

// Process decides whether c becomes a Position. Only admitted candidates
// touch the seen-set.
func (p *Pipeline) Process(c domain.JobCandidate) (domain.Position, Verdict) {
	title := strings.Join(strings.Fields(c.Title), " ")
	company := strings.TrimSpace(c.Company)

	if reason := p.checkTitle(title); reason != "" {
		return p.reject(Verdict{Reason: reason})
	}

	d := p.classifier.Classify(title, c.Description, company)
	if !d.Admitted {
		return p.reject(Verdict{Reason: d.Reason, Decision: d})
	}

	if p.dedup.CheckAndMark(company, title) {
		return p.reject(Verdict{Reason: "duplicate", Decision: d})
	}

	found := contact.ExtractContacts(c.ContactText())
	hr := p.validatorFor(company).Verified(found.Emails)

	origin := c.Origin
	if origin == "" {
		origin = domain.OriginObserved
	}

	pos := domain.Position{
		Company:       company,
		Title:         title,
		Location:      strings.TrimSpace(c.Location),
		Description:   strings.TrimSpace(c.Description),
		URL:           strings.TrimSpace(c.URL),
		ApplyLinks:    c.ApplyLinks,
		Emails:        found.Emails,
		HREmails:      hr,
		Phones:        found.Phones,
		EmailVerified: len(hr) > 0,
		ApplyMethod:   domain.ApplyMethodFor(hr, c.ApplyLinks, c.URL),
		Source:        c.Source,
		Origin:        origin,
		ScrapedAt:     p.now().UTC(),
	}

	p.stats.mu.Lock()
	p.stats.kept++
	p.stats.mu.Unlock()

	return pos, Verdict{Kept: true, Decision: d}
}

func (p *Pipeline) checkTitle(title string) string {
	n := utf8.RuneCountInString(title)
	switch {
	case n == 0:
		return "empty_title"
	case p.minTitle > 0 && n < p.minTitle:
		return "title_too_short"
	case p.maxTitle > 0 && n > p.maxTitle:
		return "title_too_long"
	}
	return ""
}

func (p *Pipeline) validatorFor(company string) *contact.HRValidator {
	if v, ok := p.validators[strings.ToLower(company)]; ok {
		return v
	}
	return p.generic
}

func (p *Pipeline) reject(v Verdict) (domain.Position, Verdict) {
	p.stats.mu.Lock()
	p.stats.rejected[v.Reason]++
	p.stats.mu.Unlock()
	return domain.Position{}, v
}

type stats struct {
	mu       sync.Mutex
	kept     int
	rejected map[string]int
}

// Snapshot copies the counters.
func (p *Pipeline) Snapshot() (kept int, rejected map[string]int) {
	p.stats.mu.Lock()
	defer p.stats.mu.Unlock()
	rejected = make(map[string]int, len(p.stats.rejected))
	for k, v := range p.stats.rejected {
		rejected[k] = v
	}
	return p.stats.kept, rejected
}
