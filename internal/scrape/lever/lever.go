package lever

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"fintechjobs-engine/internal/domain"
	"fintechjobs-engine/internal/scrape/types"
	"fintechjobs-engine/internal/scrape/util"
)

const defaultAPIBase = "https://api.lever.co/v0/postings"

type Config struct {
	Companies []Company
	APIBase   string // defaults to api.lever.co/v0/postings
	Workers   int
}

type Company struct {
	Slug string // api.lever.co/v0/postings/<slug>
	Name string
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (s *Scraper) Name() string { return "lever" }

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"` // title
	HostedURL  string `json:"hostedUrl"`
	ApplyURL   string `json:"applyUrl"`
	CreatedAt  int64  `json:"createdAt"` // ms epoch
	Categories struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
	Description      string `json:"description"` // html
	DescriptionPlain string `json:"descriptionPlain"`
	AdditionalPlain  string `json:"additionalPlain"`
}

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	companies := s.cfg.Companies
	jobsCh := make(chan []domain.JobCandidate, len(companies))
	workCh := make(chan Company)

	var wg sync.WaitGroup
	wg.Add(s.cfg.Workers)

	for i := 0; i < s.cfg.Workers; i++ {
		go func() {
			defer wg.Done()
			for co := range workCh {
				cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
				jobs, err := s.fetchCompany(cctx, co)
				cancel()

				if err != nil {
					log.Printf("[lever] company=%q slug=%q err=%v", co.Name, co.Slug, err)
					continue
				}
				if len(jobs) > 0 {
					jobsCh <- jobs
				}
			}
		}()
	}

	go func() {
		defer close(workCh)
		for _, co := range companies {
			select {
			case <-ctx.Done():
				return
			case workCh <- co:
			}
		}
	}()

	wg.Wait()
	close(jobsCh)

	var out []domain.JobCandidate
	for batch := range jobsCh {
		out = append(out, batch...)
	}

	log.Printf("[lever] Processed: %d", len(out))
	return types.ScrapeResult{
		Source:     s.Name(),
		Candidates: out,
	}, nil
}

func (s *Scraper) fetchCompany(ctx context.Context, co Company) ([]domain.JobCandidate, error) {
	apiURL := fmt.Sprintf("%s/%s?mode=json", s.cfg.APIBase, co.Slug)

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	req.Header.Set("User-Agent", "FintechJobs/1.0 (+local)")

	if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
		return nil, err
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lever get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("lever status %d", res.StatusCode)
	}

	var postings []leverPosting
	if err := json.NewDecoder(res.Body).Decode(&postings); err != nil {
		return nil, fmt.Errorf("lever decode: %w", err)
	}

	out := make([]domain.JobCandidate, 0, len(postings))
	for _, p := range postings {
		title := util.CleanText(p.Text)
		if p.ID == "" || p.HostedURL == "" || title == "" {
			continue
		}
		t := time.Now()
		if p.CreatedAt > 0 {
			t = time.UnixMilli(p.CreatedAt)
		}

		desc := util.CleanText(p.DescriptionPlain)
		if desc == "" {
			desc = util.HTMLToText(p.Description)
		}
		extra := util.CleanText(p.AdditionalPlain)

		var links []string
		for _, l := range []string{p.ApplyURL, p.HostedURL} {
			if l = util.CanonicalizeURL(l); l != "" {
				links = append(links, l)
			}
		}

		out = append(out, domain.JobCandidate{
			Title:          title,
			Company:        co.Name,
			Description:    desc,
			RawContactText: strings.Join([]string{title, desc, extra, co.Name}, " "),
			Location:       util.NormalizeLocation(p.Categories.Location),
			URL:            p.HostedURL,
			ApplyLinks:     links,
			Source:         s.Name(),
			Origin:         domain.OriginObserved,
			PostedAt:       &t,
		})
	}
	return out, nil
}
