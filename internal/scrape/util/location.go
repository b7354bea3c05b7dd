package util

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FindLocation looks for a location inside one job element, then in its
// labeled text ("Location: Bengaluru").
func FindLocation(sel *goquery.Selection) string {
	for _, s := range []string{
		".location",
		".job-location",
		".job__location",
		"[data-testid='job-location']",
		"[itemprop='jobLocation']",
	} {
		if t := CleanText(sel.Find(s).First().Text()); t != "" {
			return NormalizeLocation(t)
		}
	}
	return NormalizeLocation(LabeledLocation(sel.Text()))
}

// LabeledLocation returns what follows a "location:" label in s.
func LabeledLocation(s string) string {
	low := strings.ToLower(s)
	for _, lab := range []string{"job location:", "locations:", "location:"} {
		i := strings.Index(low, lab)
		if i < 0 {
			continue
		}
		rest := s[i+len(lab):]
		for _, cut := range []string{"\n", "\r", " | ", " · "} {
			if j := strings.Index(rest, cut); j >= 0 {
				rest = rest[:j]
			}
		}
		rest = CleanText(rest)
		if rest != "" && len(rest) <= 80 {
			return rest
		}
	}
	return ""
}

// NormalizeLocation drops labels and repeated comma-separated parts.
func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	for _, p := range []string{"Location:", "Locations:", "LOCATION:"} {
		loc = strings.TrimSpace(strings.TrimPrefix(loc, p))
	}
	if loc == "" {
		return ""
	}

	seen := map[string]bool{}
	var out []string
	for _, p := range strings.Split(loc, ",") {
		p = CleanText(p)
		k := strings.ToLower(p)
		if p == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}
