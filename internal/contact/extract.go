package contact

import (
	"regexp"
	"sort"
	"strings"

	"fintechjobs-engine/internal/domain"
)

var (
	reEmail = regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`)

	// Overlapping on purpose: one number can surface in several shapes.
	rePhones = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{10}\b`),
		regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`),
		regexp.MustCompile(`\+91[-.\s]?\d{10}`),
		regexp.MustCompile(`\+91[-.\s]?\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`),
	}
)

// ExtractContacts pulls email addresses and phone numbers out of free text.
// Emails are lowercased; phones keep the exact text they matched.
func ExtractContacts(text string) domain.ExtractedContact {
	if strings.TrimSpace(text) == "" {
		return domain.ExtractedContact{}
	}
	return domain.ExtractedContact{
		Emails: ExtractEmails(text),
		Phones: ExtractPhones(text),
	}
}

func ExtractEmails(text string) []string {
	seen := map[string]bool{}
	for _, m := range reEmail.FindAllString(text, -1) {
		seen[strings.ToLower(m)] = true
	}
	return sortedKeys(seen)
}

func ExtractPhones(text string) []string {
	seen := map[string]bool{}
	for _, re := range rePhones {
		for _, m := range re.FindAllString(text, -1) {
			seen[m] = true
		}
	}
	return sortedKeys(seen)
}

// CanonicalPhones reduces raw phone matches to distinct 10-digit numbers:
// separators are dropped along with a leading 91 country code.
func CanonicalPhones(phones []string) []string {
	seen := map[string]bool{}
	for _, p := range phones {
		var b strings.Builder
		for _, r := range p {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		d := b.String()
		if len(d) == 12 && strings.HasPrefix(d, "91") {
			d = d[2:]
		}
		if d != "" {
			seen[d] = true
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
