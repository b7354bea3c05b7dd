package config

import (
	"fmt"
	"strings"

	"fintechjobs-engine/internal/contact"
	"fintechjobs-engine/internal/relevance"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus what is wrong with it.
// Empty keyword tables are warnings: the classifier then never admits,
// which is legal but almost never intended.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Keywords.Domain = trimList(out.Keywords.Domain)
	out.Keywords.Seniority = trimList(out.Keywords.Seniority)
	out.Keywords.Role = trimList(out.Keywords.Role)
	out.Keywords.Exclude = trimList(out.Keywords.Exclude)
	out.Email.SearchSubjectAny = trimList(out.Email.SearchSubjectAny)

	// ---- Validation rules ----

	if _, err := relevance.ParsePolicy(out.Filters.Policy); err != nil {
		res.addErr("filters.policy: %v", err)
	}
	checkScope := func(name string, fields []string) {
		for _, f := range fields {
			if _, err := relevance.ParseField(f); err != nil {
				res.addErr("filters.scope.%s: %v", name, err)
			}
		}
	}
	checkScope("domain", out.Filters.Scope.Domain)
	checkScope("seniority", out.Filters.Scope.Seniority)
	checkScope("role", out.Filters.Scope.Role)
	checkScope("exclude", out.Filters.Scope.Exclude)

	if out.Filters.MinTitleLength < 0 || out.Filters.MaxTitleLength < 0 {
		res.addErr("filters title length bounds must be >= 0")
	}
	if out.Filters.MaxTitleLength > 0 && out.Filters.MinTitleLength > out.Filters.MaxTitleLength {
		res.addErr("filters.min_title_length (%d) exceeds max_title_length (%d)",
			out.Filters.MinTitleLength, out.Filters.MaxTitleLength)
	}

	if len(out.Keywords.Domain) == 0 {
		res.addWarn("keywords.domain is empty; no job will ever be admitted.")
	}
	if len(out.Keywords.Role) == 0 {
		res.addWarn("keywords.role is empty; no job will ever be admitted.")
	}
	if len(out.Keywords.Seniority) == 0 {
		if strings.EqualFold(out.Filters.Policy, string(relevance.PolicyAll)) {
			res.addWarn("keywords.seniority is empty and policy is %q; no job will ever be admitted.", out.Filters.Policy)
		} else {
			res.addWarn("keywords.seniority is empty; seniority will never match.")
		}
	}

	// simple conflict check
	excl := map[string]bool{}
	for _, k := range out.Keywords.Exclude {
		excl[strings.ToLower(k)] = true
	}
	for _, k := range out.Keywords.Role {
		if excl[strings.ToLower(k)] {
			res.addWarn("keyword appears in both role and exclude: %q", k)
		}
	}

	names := map[string]bool{}
	for i, co := range out.Companies {
		if strings.TrimSpace(co.Name) == "" {
			res.addErr("companies[%d].name is required", i)
			continue
		}
		key := strings.ToLower(strings.TrimSpace(co.Name))
		if names[key] {
			res.addWarn("company %q is listed more than once", co.Name)
		}
		names[key] = true
		for _, err := range contact.ValidatePatterns(co.HRPatterns) {
			res.addErr("companies[%d] (%s): %v", i, co.Name, err)
		}
	}

	if out.Sources.Careers.Enabled {
		n := 0
		for _, co := range out.Companies {
			n += len(co.CareerURLs)
		}
		if n == 0 {
			res.addWarn("sources.careers is enabled but no company has career_urls.")
		}
	}
	if out.Sources.Greenhouse.Enabled && len(out.Sources.Greenhouse.Companies) == 0 {
		res.addWarn("sources.greenhouse is enabled with no companies.")
	}
	if out.Sources.Lever.Enabled && len(out.Sources.Lever.Companies) == 0 {
		res.addWarn("sources.lever is enabled with no companies.")
	}

	if out.Run.RequestsPerSecond < 0 {
		res.addErr("run.requests_per_second must be >= 0")
	} else if out.Run.RequestsPerSecond > 5 {
		res.addWarn("run.requests_per_second is high (%.1f) and may get you blocked.", out.Run.RequestsPerSecond)
	}
	if out.Run.SourceTimeoutSeconds < 0 {
		res.addErr("run.source_timeout_seconds must be >= 0")
	}
	if out.Server.IntervalMinutes < 0 {
		res.addErr("server.interval_minutes must be >= 0")
	} else if out.Server.IntervalMinutes > 0 && out.Server.IntervalMinutes < 5 {
		res.addWarn("server.interval_minutes=%d is aggressive for career pages.", out.Server.IntervalMinutes)
	}

	// email required fields if enabled (password not required here; it’s in keychain)
	if out.Email.Enabled {
		if strings.TrimSpace(out.Email.IMAPHost) == "" {
			res.addErr("email.imap_host is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Username) == "" {
			res.addErr("email.username is required when email.enabled=true")
		}
		if len(out.Email.SearchSubjectAny) == 0 {
			res.addWarn("email.search_subject_any is empty; every unseen mail will be scanned.")
		}
	}

	if strings.TrimSpace(out.Outreach.FromAddress) == "" {
		res.addWarn("outreach.from_address is empty; drafts will have no sender.")
	}

	return out, res
}
