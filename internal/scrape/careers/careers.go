// Package careers scrapes company career pages for job listings and the
// contact data printed around them.
package careers

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"fintechjobs-engine/internal/domain"
	"fintechjobs-engine/internal/scrape/types"
	"fintechjobs-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

var jobSelectors = []string{
	".job-listing",
	".career-opening",
	".job-card",
	".position",
	".opening",
	"[data-job]",
	".job-item",
	`a[href*="job"]`,
	`a[href*="career"]`,
	`a[href*="position"]`,
	".lever-apply",
	".greenhouse-apply",
}

var descSelectors = []string{
	".job-description",
	".description",
	".job-details",
	".requirements",
	".responsibilities",
	".job-summary",
	"[data-description]",
	".job-content",
	".position-description",
}

var closedIndicators = []string{
	"no longer accepting applications",
	"position is closed",
	"application closed",
	"applications are closed",
	"this job is no longer available",
	"position has been filled",
	"position filled",
	"hiring complete",
}

// descTextLimit caps the stored description only; contacts are searched
// in the full page text.
const descTextLimit = 1000

type Company struct {
	Name string
	URLs []string
}

type Config struct {
	Companies []Company
	// RoleKeywords pick anchors when no job element selector matches.
	RoleKeywords []string
	MaxJobs      int // per source, 0 = unlimited

	Retries   int
	RetryWait time.Duration
	Timeout   time.Duration
	// SkipDetails avoids fetching each job page.
	SkipDetails bool
}

type Scraper struct {
	cfg     Config
	client  *resty.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}

	client := resty.New()
	client.SetHeader("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	client.SetTimeout(cfg.Timeout)
	client.SetRetryCount(cfg.Retries)
	client.SetRetryWaitTime(cfg.RetryWait)
	client.SetRetryMaxWaitTime(cfg.RetryWait * 4)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || (r != nil && r.StatusCode() >= 500)
	})

	return &Scraper{cfg: cfg, client: client, limiter: limiter}
}

func (s *Scraper) Name() string { return "careers" }

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	var out []domain.JobCandidate
	for _, co := range s.cfg.Companies {
		for _, u := range co.URLs {
			if ctx.Err() != nil {
				return types.ScrapeResult{Source: s.Name(), Candidates: out}, ctx.Err()
			}
			jobs, err := s.fetchPage(ctx, co, u)
			if err != nil {
				log.Printf("[careers] company=%q url=%q err=%v", co.Name, u, err)
				continue
			}
			out = append(out, jobs...)
			if s.cfg.MaxJobs > 0 && len(out) >= s.cfg.MaxJobs {
				out = out[:s.cfg.MaxJobs]
				log.Printf("[careers] Processed: %d (limit reached)", len(out))
				return types.ScrapeResult{Source: s.Name(), Candidates: out}, nil
			}
		}
	}

	log.Printf("[careers] Processed: %d", len(out))
	return types.ScrapeResult{Source: s.Name(), Candidates: out}, nil
}

func (s *Scraper) get(ctx context.Context, u string) (*goquery.Document, error) {
	if err := s.limiter.WaitURL(ctx, u); err != nil {
		return nil, err
	}
	res, err := s.client.R().SetContext(ctx).Get(u)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", u, err)
	}
	if res.StatusCode() >= 400 {
		return nil, fmt.Errorf("get %s: status %d", u, res.StatusCode())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", u, err)
	}
	return doc, nil
}

func (s *Scraper) fetchPage(ctx context.Context, co Company, base string) ([]domain.JobCandidate, error) {
	doc, err := s.get(ctx, base)
	if err != nil {
		return nil, err
	}

	doc.Find("script, style, noscript").Remove()
	pageText := util.CleanText(doc.Find("body").Text())
	pageLinks := ExtractApplyLinks(doc, base)

	var out []domain.JobCandidate
	seen := map[string]bool{}
	for _, el := range s.jobElements(doc) {
		title, jobURL := titleAndLink(el, base)
		if title == "" || util.LooksLikeJunkTitle(title) {
			continue
		}
		if seen[title+"|"+jobURL] {
			continue
		}
		seen[title+"|"+jobURL] = true

		c := domain.JobCandidate{
			Title:    title,
			Company:  co.Name,
			Location: util.FindLocation(el),
			URL:      jobURL,
			Source:   s.Name(),
			Origin:   domain.OriginObserved,
		}

		links := pageLinks
		var jobText string
		if !s.cfg.SkipDetails && jobURL != base {
			desc, text, jobLinks, closed, err := s.details(ctx, jobURL)
			if err != nil {
				log.Printf("[careers] details url=%q err=%v", jobURL, err)
			}
			if closed {
				log.Printf("[careers] skipped (closed) title=%q url=%q", title, jobURL)
				continue
			}
			c.Description = desc
			jobText = text
			links = mergeLinks(pageLinks, jobLinks)
		}
		c.ApplyLinks = links
		// contacts printed on the listing page belong to every job on it
		c.RawContactText = strings.Join([]string{title, c.Description, jobText, pageText}, " ")

		out = append(out, c)
	}
	return out, nil
}

func (s *Scraper) jobElements(doc *goquery.Document) []*goquery.Selection {
	var els []*goquery.Selection
	for _, sel := range jobSelectors {
		found := doc.Find(sel)
		if found.Length() == 0 {
			continue
		}
		found.Each(func(_ int, e *goquery.Selection) { els = append(els, e) })
		return els
	}

	keywords := append([]string{"engineer", "developer"}, s.cfg.RoleKeywords...)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		text := strings.ToLower(a.Text())
		for _, k := range keywords {
			if k != "" && strings.Contains(text, strings.ToLower(k)) {
				els = append(els, a)
				return
			}
		}
	})
	return els
}

func titleAndLink(el *goquery.Selection, base string) (title, link string) {
	link = base
	if goquery.NodeName(el) == "a" {
		title = util.CleanText(el.Text())
		if href, ok := el.Attr("href"); ok {
			if u := util.ResolveURL(base, href); u != "" {
				link = u
			}
		}
		return title, link
	}

	if h := el.Find("h1, h2, h3, h4, h5, h6, a").First(); h.Length() > 0 {
		title = util.CleanText(h.Text())
	} else {
		title = util.CleanText(el.Text())
	}
	if href, ok := el.Find("a[href]").First().Attr("href"); ok {
		if u := util.ResolveURL(base, href); u != "" {
			link = u
		}
	}
	return title, link
}

// details fetches a job page for its description, full body text and
// apply links.
func (s *Scraper) details(ctx context.Context, u string) (desc, text string, links []string, closed bool, err error) {
	doc, err := s.get(ctx, u)
	if err != nil {
		return "", "", nil, false, err
	}
	doc.Find("script, style, noscript").Remove()

	text = util.CleanText(doc.Find("body").Text())
	body := strings.ToLower(text)
	for _, ind := range closedIndicators {
		if strings.Contains(body, ind) {
			return "", "", nil, true, nil
		}
	}

	for _, sel := range descSelectors {
		if t := util.CleanText(doc.Find(sel).First().Text()); t != "" {
			desc = t
			break
		}
	}
	if desc == "" {
		desc = text
	}
	return util.Truncate(desc, descTextLimit), text, ExtractApplyLinks(doc, u), false, nil
}

func mergeLinks(a, b []string) []string {
	set := map[string]struct{}{}
	for _, l := range a {
		set[l] = struct{}{}
	}
	for _, l := range b {
		set[l] = struct{}{}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
