package greenhouse

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"fintechjobs-engine/internal/domain"
	"fintechjobs-engine/internal/scrape/types"
	"fintechjobs-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

const defaultBaseURL = "https://boards.greenhouse.io"

type Config struct {
	Companies []Company // list of boards
	BaseURL   string    // defaults to boards.greenhouse.io
}

type Company struct {
	Slug string // boards.greenhouse.io/<slug>
	Name string // display name
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (s *Scraper) Name() string { return "greenhouse" }

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	var out []domain.JobCandidate
	for _, co := range s.cfg.Companies {
		jobs, err := s.fetchCompany(ctx, co)
		if err != nil {
			// one board down doesn't fail the run
			log.Printf("[greenhouse] company=%q slug=%q err=%v", co.Name, co.Slug, err)
			continue
		}
		out = append(out, jobs...)
	}
	log.Printf("[greenhouse] Processed: %d", len(out))
	return types.ScrapeResult{Source: s.Name(), Candidates: out}, nil
}

func (s *Scraper) getDoc(ctx context.Context, u string) (*goquery.Document, error) {
	if err := s.limiter.WaitURL(ctx, u); err != nil {
		return nil, err
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	req.Header.Set("User-Agent", "FintechJobs/1.0 (+local)")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("greenhouse get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("greenhouse status %d", res.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("greenhouse parse html: %w", err)
	}
	return doc, nil
}

func (s *Scraper) fetchCompany(ctx context.Context, co Company) ([]domain.JobCandidate, error) {
	boardURL := fmt.Sprintf("%s/%s", s.cfg.BaseURL, co.Slug)
	doc, err := s.getDoc(ctx, boardURL)
	if err != nil {
		return nil, err
	}

	// boards link to /<slug>/jobs/<id>
	seen := map[string]bool{}
	var jobs []domain.JobCandidate
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		abs := util.ResolveURL(boardURL, href)
		if abs == "" || !strings.Contains(abs, "/jobs/") {
			return
		}
		id := extractJobID(abs)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true

		title := util.CleanText(a.Text())
		if util.LooksLikeJunkTitle(title) {
			title = "" // hydrate reads the real one
		}
		jobs = append(jobs, domain.JobCandidate{
			Title:   title,
			Company: co.Name,
			URL:     abs,
			Source:  s.Name(),
			Origin:  domain.OriginObserved,
		})
	})

	for i := range jobs {
		if err := s.hydrateJob(ctx, &jobs[i]); err != nil {
			log.Printf("[greenhouse] hydrate url=%q err=%v", jobs[i].URL, err)
		}
	}
	return jobs, nil
}

func (s *Scraper) hydrateJob(ctx context.Context, j *domain.JobCandidate) error {
	doc, err := s.getDoc(ctx, j.URL)
	if err != nil {
		return err
	}

	if j.Title == "" {
		j.Title = util.CleanText(doc.Find("h1").First().Text())
	}
	if loc := util.NormalizeLocation(doc.Find(".location").First().Text()); loc != "" {
		j.Location = loc
	}

	content := doc.Find("#content").First()
	if content.Length() == 0 {
		content = doc.Find("body")
	}
	content.Find("script, style").Remove()
	j.Description = util.CleanText(content.Text())
	j.RawContactText = strings.Join([]string{j.Title, j.Description, j.Company}, " ")
	j.ApplyLinks = []string{j.URL}

	t := time.Now()
	j.PostedAt = &t
	return nil
}

func extractJobID(u string) string {
	parts := strings.Split(u, "/jobs/")
	if len(parts) < 2 {
		return ""
	}
	var id strings.Builder
	for _, r := range parts[1] {
		if r < '0' || r > '9' {
			break
		}
		id.WriteRune(r)
	}
	return id.String()
}
