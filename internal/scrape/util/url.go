package util

import (
	"net/url"
	"sort"
	"strings"
)

// CanonicalizeURL lowercases scheme/host, drops the fragment and tracking
// params, and sorts the query.
func CanonicalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" {
			q.Del(k)
		}
	}
	for k := range q {
		sort.Strings(q[k])
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ResolveURL makes href absolute against base. Non-http(s) results
// (mailto:, javascript:, ...) come back empty.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if b, err := url.Parse(base); err == nil {
		ref = b.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return CanonicalizeURL(ref.String())
}

// HostOf returns the lowercased hostname of raw without a leading www.
func HostOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// hosted ATS domains that are always an application target
var atsDomains = []string{
	"lever.co",
	"greenhouse.io",
	"workable.com",
	"bamboohr.com",
	"smartrecruiters.com",
	"icims.com",
	"applytojob.com",
	"jobvite.com",
	"talentbrew.com",
}

var applyKeywords = []string{"apply", "job", "career", "application", "position"}

// IsValidApplyLink accepts absolute URLs on a known ATS host or whose
// text names an application.
func IsValidApplyLink(raw string) bool {
	host := HostOf(raw)
	if host == "" {
		return false
	}
	for _, d := range atsDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	low := strings.ToLower(raw)
	for _, k := range applyKeywords {
		if strings.Contains(low, k) {
			return true
		}
	}
	return false
}
