package email_scrape

import (
	"net/url"
	"regexp"
	"strings"

	"fintechjobs-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

type AlertJob struct {
	Title    string
	Company  string
	Location string
	URL      string
}

var reLinkedInJobID = regexp.MustCompile(`/jobs/view/(\d+)`)

// junk LinkedIn appends to card titles
var badTitleParts = []string{"Actively recruiting", "Easy Apply", "Promoted"}

func looksLikeLinkedInJobAlert(from, subject, html string) bool {
	f := strings.ToLower(from)
	if !strings.Contains(f, "linkedin.com") {
		return false
	}
	s := strings.ToLower(subject)
	return strings.Contains(s, "job") || strings.Contains(strings.ToLower(html), "/jobs/view/")
}

// ParseLinkedInJobAlertHTML merges the anchors of each job card (logo,
// title, company) into one job by job id.
func ParseLinkedInJobAlertHTML(htmlBody string) ([]AlertJob, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil, err
	}

	byID := map[string]*AlertJob{}
	var order []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		jobURL := unwrapRedirect(href)
		m := reLinkedInJobID.FindStringSubmatch(jobURL)
		if m == nil || !strings.Contains(strings.ToLower(jobURL), "linkedin.com") {
			return
		}
		id := m[1]

		j, ok := byID[id]
		if !ok {
			j = &AlertJob{URL: "https://www.linkedin.com/jobs/view/" + id}
			byID[id] = j
			order = append(order, id)
		}

		if t := cleanAlertTitle(a.Text()); len(t) > len(j.Title) && !strings.Contains(t, " · ") {
			j.Title = t
		}

		card := a.Closest("table")
		if card.Length() == 0 {
			card = a.Parent()
		}
		card.Find("p").Each(func(_ int, p *goquery.Selection) {
			t := util.CleanText(p.Text())
			if j.Company == "" && strings.Contains(t, " · ") {
				parts := strings.SplitN(t, " · ", 2)
				j.Company = strings.TrimSpace(parts[0])
				j.Location = util.NormalizeLocation(parts[1])
			}
		})
	})

	out := make([]AlertJob, 0, len(order))
	for _, id := range order {
		if j := byID[id]; j.Title != "" {
			out = append(out, *j)
		}
	}
	return out, nil
}

func cleanAlertTitle(s string) string {
	s = util.CleanText(s)
	for _, b := range badTitleParts {
		s = strings.ReplaceAll(s, b, "")
	}
	s = util.CleanText(s)
	low := strings.ToLower(s)
	if strings.Contains(low, "alumni") || strings.Contains(low, "connections") ||
		strings.Contains(low, "applicants") || strings.Contains(low, "see all jobs") {
		return ""
	}
	return s
}

// unwrapRedirect returns the target of ?url= and google /url?q= wrappers.
func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if raw := u.Query().Get("url"); raw != "" {
		if uu, err := url.Parse(raw); err == nil && uu.Host != "" {
			return uu.String()
		}
	}
	if strings.Contains(strings.ToLower(u.Host), "google.") && strings.HasPrefix(u.Path, "/url") {
		if q := u.Query().Get("q"); q != "" {
			if uu, err := url.Parse(q); err == nil && uu.Host != "" {
				return uu.String()
			}
		}
	}
	return href
}
