package careers

import (
	"regexp"
	"sort"
	"strings"

	"fintechjobs-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

var applySelectors = []string{
	`a[href*="apply"]`,
	`a[href*="job"]`,
	`a[href*="career"]`,
	`button[onclick*="apply"]`,
	`.apply-button`,
	`.apply-now`,
	`.job-apply`,
	`[data-apply]`,
	`a[href*="lever.co"]`,
	`a[href*="greenhouse.io"]`,
	`a[href*="workable.com"]`,
	`a[href*="bamboohr.com"]`,
}

var formSelectors = []string{
	`form[action*="apply"]`,
	`form[action*="job"]`,
	`form[action*="career"]`,
	`.application-form`,
	`#job-application`,
}

var reOnclickURL = regexp.MustCompile(`(?i)["']([^"']+apply[^"']*)["']`)

// ExtractApplyLinks collects application links and form targets from doc,
// resolved against base, validated and deduplicated.
func ExtractApplyLinks(doc *goquery.Document, base string) []string {
	set := map[string]struct{}{}
	add := func(raw string) {
		if u := util.ResolveURL(base, raw); u != "" && util.IsValidApplyLink(u) {
			set[u] = struct{}{}
		}
	}

	for _, sel := range applySelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if href, ok := s.Attr("href"); ok {
				add(href)
			} else if href, ok := s.Attr("data-href"); ok {
				add(href)
			}
			if onclick, ok := s.Attr("onclick"); ok && strings.Contains(strings.ToLower(onclick), "apply") {
				if m := reOnclickURL.FindStringSubmatch(onclick); m != nil {
					add(m[1])
				}
			}
		})
	}
	for _, sel := range formSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if action, ok := s.Attr("action"); ok {
				add(action)
			}
		})
	}

	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for u := range set {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
