// Package relevance decides whether a posting matches the target job
// criteria. Keywords are matched as plain substrings of the lowercased
// text, so short keywords like "sde" also hit inside longer words.
// Callers needing word boundaries must harden the keyword tables.
package relevance

import (
	"fmt"
	"strings"

	"fintechjobs-engine/internal/domain"
)

type Policy string

const (
	// PolicyDomainAndRole admits on domain AND role; seniority is advisory.
	PolicyDomainAndRole Policy = "domain_and_role"
	// PolicyAll additionally requires a seniority match.
	PolicyAll Policy = "all"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyDomainAndRole, nil
	case PolicyDomainAndRole, PolicyAll:
		return p, nil
	default:
		return "", fmt.Errorf("unknown relevance policy %q", s)
	}
}

type Tables struct {
	Domain    []string
	Seniority []string
	Role      []string
	Exclude   []string
}

type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldCompany     Field = "company"
)

// Scope lists, per category, which fields make up its search text.
type Scope struct {
	Domain    []Field
	Seniority []Field
	Role      []Field
	Exclude   []Field
}

func DefaultScope() Scope {
	return Scope{
		Domain:    []Field{FieldTitle, FieldDescription, FieldCompany},
		Seniority: []Field{FieldTitle, FieldDescription},
		Role:      []Field{FieldTitle, FieldDescription},
		Exclude:   []Field{FieldTitle, FieldDescription},
	}
}

// AllFieldsScope searches every field for every category.
func AllFieldsScope() Scope {
	all := []Field{FieldTitle, FieldDescription, FieldCompany}
	return Scope{Domain: all, Seniority: all, Role: all, Exclude: all}
}

func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldTitle, FieldDescription, FieldCompany:
		return f, nil
	default:
		return "", fmt.Errorf("unknown field %q", s)
	}
}

type Classifier struct {
	Tables Tables
	Scope  Scope
	Policy Policy
}

func New(tables Tables, scope Scope, policy Policy) Classifier {
	return Classifier{Tables: tables, Scope: scope, Policy: policy}
}

// Classify runs the default scope and policy against tables.
func Classify(title, description, company string, tables Tables) domain.RelevanceDecision {
	return New(tables, DefaultScope(), PolicyDomainAndRole).Classify(title, description, company)
}

func (c Classifier) Classify(title, description, company string) domain.RelevanceDecision {
	fields := map[Field]string{
		FieldTitle:       title,
		FieldDescription: description,
		FieldCompany:     company,
	}

	var d domain.RelevanceDecision
	d.MatchesDomain = anyIn(searchText(fields, c.Scope.Domain), c.Tables.Domain) != ""
	d.MatchesSeniority = anyIn(searchText(fields, c.Scope.Seniority), c.Tables.Seniority) != ""
	d.MatchesRole = anyIn(searchText(fields, c.Scope.Role), c.Tables.Role) != ""

	if hit := anyIn(searchText(fields, c.Scope.Exclude), c.Tables.Exclude); hit != "" {
		d.Excluded = true
		d.Reason = "excluded:" + hit
		return d
	}

	switch {
	case !d.MatchesDomain:
		d.Reason = "no_domain"
	case !d.MatchesRole:
		d.Reason = "no_role"
	case c.Policy == PolicyAll && !d.MatchesSeniority:
		d.Reason = "no_seniority"
	default:
		d.Admitted = true
	}
	return d
}

func searchText(fields map[Field]string, scope []Field) string {
	parts := make([]string, 0, len(scope))
	for _, f := range scope {
		parts = append(parts, fields[f])
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// anyIn returns the first keyword contained in text, or "".
func anyIn(text string, keywords []string) string {
	if text == "" {
		return ""
	}
	for _, k := range keywords {
		n := strings.ToLower(strings.TrimSpace(k))
		if n == "" {
			continue
		}
		if strings.Contains(text, n) {
			return n
		}
	}
	return ""
}
