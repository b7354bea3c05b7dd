package contact

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractContacts_Mixed(t *testing.T) {
	got := ExtractContacts("Contact hr@acme.com or call 9876543210 / +91-9876543210")

	assert.Equal(t, []string{"hr@acme.com"}, got.Emails)
	assert.Contains(t, got.Phones, "9876543210")

	hasIntl := false
	for _, p := range got.Phones {
		if strings.HasPrefix(p, "+91") {
			hasIntl = true
		}
	}
	assert.True(t, hasIntl, "expected a +91 variant in %v", got.Phones)
}

func TestExtractContacts_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		got := ExtractContacts(in)
		assert.Empty(t, got.Emails)
		assert.Empty(t, got.Phones)
	}
}

func TestExtractEmails(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercased and deduped", "Write to Careers@Paytm.com, careers@paytm.com", []string{"careers@paytm.com"}},
		{"plus and dots", "ping jane.doe+jobs@mail.example.co.in today", []string{"jane.doe+jobs@mail.example.co.in"}},
		{"several", "hr@a.io talent@b.com", []string{"hr@a.io", "talent@b.com"}},
		{"single letter tld rejected", "x@y.z", nil},
		{"no address", "apply on the portal", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ExtractEmails(tt.in)); diff != "" {
				t.Errorf("ExtractEmails(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestExtractEmails_AreSubstrings(t *testing.T) {
	texts := []string{
		"Reach HR@Razorpay.COM or jobs@razorpay.com.",
		"<a href=\"mailto:People@Groww.in\">mail</a> and careers@cred.club",
		"odd: a@b.cc,foo.bar@baz-qux.org;",
	}
	for _, text := range texts {
		for _, e := range ExtractEmails(text) {
			require.Contains(t, strings.ToLower(text), e)
			require.True(t, reEmail.MatchString(e), "%q should match the email grammar", e)
		}
	}
}

func TestExtractPhones(t *testing.T) {
	got := ExtractPhones("call 987-654-3210 or 987.654.3210")
	assert.ElementsMatch(t, []string{"987-654-3210", "987.654.3210"}, got)

	got = ExtractPhones("+91 9876543210")
	assert.Contains(t, got, "+91 9876543210")
	assert.Contains(t, got, "9876543210")

	assert.Empty(t, ExtractPhones("ticket 12345"))
}

func TestCanonicalPhones(t *testing.T) {
	raw := ExtractPhones("9876543210 / +91-9876543210 / 987 654 3210")
	assert.Greater(t, len(raw), 1)
	assert.Equal(t, []string{"9876543210"}, CanonicalPhones(raw))
}
