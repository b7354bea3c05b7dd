package scrape

import (
	"strings"
	"time"

	"fintechjobs-engine/internal/config"
	"fintechjobs-engine/internal/scrape/careers"
	email_scrape "fintechjobs-engine/internal/scrape/email"
	"fintechjobs-engine/internal/scrape/greenhouse"
	"fintechjobs-engine/internal/scrape/lever"
	"fintechjobs-engine/internal/scrape/types"
	"fintechjobs-engine/internal/scrape/util"
)

// careers-page retry policy
const (
	careersRetries   = 3
	careersRetryWait = 5 * time.Second
)

// BuildFetchers returns the enabled observed sources. Sources are
// skipped when they have nothing configured to visit.
func BuildFetchers(cfg config.Config, limiter *util.HostLimiter) []types.Fetcher {
	var fetchers []types.Fetcher

	if cfg.Sources.Careers.Enabled {
		if cos := careersCompanies(cfg.Companies); len(cos) > 0 {
			fetchers = append(fetchers, careers.New(careers.Config{
				Companies:    cos,
				RoleKeywords: cfg.Keywords.Role,
				MaxJobs:      cfg.Run.MaxJobsPerSource,
				Retries:      careersRetries,
				RetryWait:    careersRetryWait,
			}, limiter))
		}
	}
	if cfg.Sources.Greenhouse.Enabled {
		if cos := MapGreenhouseCompanies(cfg.Sources.Greenhouse.Companies); len(cos) > 0 {
			fetchers = append(fetchers, greenhouse.New(greenhouse.Config{Companies: cos}, limiter))
		}
	}
	if cfg.Sources.Lever.Enabled {
		if cos := MapLeverCompanies(cfg.Sources.Lever.Companies); len(cos) > 0 {
			fetchers = append(fetchers, lever.New(lever.Config{Companies: cos}, limiter))
		}
	}
	if cfg.Email.Enabled {
		fetchers = append(fetchers, email_scrape.New(cfg))
	}
	return fetchers
}

func careersCompanies(in []config.Company) []careers.Company {
	var out []careers.Company
	for _, c := range in {
		var urls []string
		for _, u := range c.CareerURLs {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
		if len(urls) == 0 {
			continue
		}
		out = append(out, careers.Company{Name: strings.TrimSpace(c.Name), URLs: urls})
	}
	return out
}

// boardName falls back to the slug when a board has no display name.
func boardName(b config.Board) (slug, name string) {
	slug = strings.TrimSpace(b.Slug)
	name = strings.TrimSpace(b.Name)
	if name == "" {
		name = slug
	}
	return slug, name
}

func MapGreenhouseCompanies(in []config.Board) []greenhouse.Company {
	out := make([]greenhouse.Company, 0, len(in))
	for _, b := range in {
		slug, name := boardName(b)
		if slug == "" {
			continue
		}
		out = append(out, greenhouse.Company{Slug: slug, Name: name})
	}
	return out
}

func MapLeverCompanies(in []config.Board) []lever.Company {
	out := make([]lever.Company, 0, len(in))
	for _, b := range in {
		slug, name := boardName(b)
		if slug == "" {
			continue
		}
		out = append(out, lever.Company{Slug: slug, Name: name})
	}
	return out
}
