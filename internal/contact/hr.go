package contact

import (
	"fmt"
	"regexp"
	"strings"

	"fintechjobs-engine/internal/domain"
)

// GenericHRPrefixes are local parts accepted for any company.
var GenericHRPrefixes = []string{"careers", "hr", "talent", "recruitment", "jobs", "hiring", "people"}

// IsVerifiedHR reports whether email looks like a recruiting contact.
// Company patterns are matched from the start of the address; invalid
// and blank patterns are ignored. "Verified" is pattern plausibility only, nothing
// is looked up over the network.
func IsVerifiedHR(email string, companyPatterns []string) bool {
	email = normalizeEmail(email)
	if email == "" {
		return false
	}
	for _, p := range companyPatterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		re, err := compileAnchored(p)
		if err != nil {
			continue
		}
		if re.MatchString(email) {
			return true
		}
	}
	return hasGenericPrefix(email)
}

// HRValidator is IsVerifiedHR with the company patterns compiled once.
type HRValidator struct {
	patterns []*regexp.Regexp
}

func NewHRValidator(companyPatterns []string) (*HRValidator, error) {
	v := &HRValidator{}
	for _, p := range companyPatterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		re, err := compileAnchored(p)
		if err != nil {
			return nil, fmt.Errorf("hr pattern %q: %w", p, err)
		}
		v.patterns = append(v.patterns, re)
	}
	return v, nil
}

func (v *HRValidator) IsVerified(email string) bool {
	email = normalizeEmail(email)
	if email == "" {
		return false
	}
	if v != nil {
		for _, re := range v.patterns {
			if re.MatchString(email) {
				return true
			}
		}
	}
	return hasGenericPrefix(email)
}

func (v *HRValidator) Verify(emails []string) []domain.HRVerification {
	out := make([]domain.HRVerification, 0, len(emails))
	for _, e := range emails {
		out = append(out, domain.HRVerification{Email: e, IsVerifiedHR: v.IsVerified(e)})
	}
	return out
}

// Verified returns the subset of emails that pass IsVerified, in order.
func (v *HRValidator) Verified(emails []string) []string {
	var out []string
	for _, r := range v.Verify(emails) {
		if r.IsVerifiedHR {
			out = append(out, r.Email)
		}
	}
	return out
}

// ValidatePatterns returns one error per pattern that does not compile.
func ValidatePatterns(patterns []string) []error {
	var errs []error
	for _, p := range patterns {
		if _, err := compileAnchored(p); err != nil {
			errs = append(errs, fmt.Errorf("hr pattern %q: %w", p, err))
		}
	}
	return errs
}

func compileAnchored(p string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + p + `)`)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hasGenericPrefix(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return false
	}
	local := email[:at]
	for _, p := range GenericHRPrefixes {
		if local == p {
			return true
		}
	}
	return false
}
