package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsVerifiedHR(t *testing.T) {
	tests := []struct {
		email    string
		patterns []string
		want     bool
	}{
		{"careers@acme.com", nil, true},
		{"jane.doe@acme.com", nil, false},
		{"anything@x.com", []string{`anything@x\.com`}, true},
		{"  HR@Acme.com ", nil, true},
		{"people@acme.com", nil, true},
		{"hiring@acme.com", nil, true},
		{"careersteam@acme.com", nil, false},
		{"recruit@acme.com", []string{`careers@acme\.com`}, false},
		{"talent@paytm.com", []string{`careers@paytm\.com`, `talent@paytm\.com`}, true},
		{"x.careers@paytm.com", []string{`careers@paytm\.com`}, false},
		{"", []string{`.*`}, false},
		{"not-an-email", nil, false},
		{"bob@x.com", []string{`(`}, false},
		{"jane.doe@acme.com", []string{"", "  "}, false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, IsVerifiedHR(tt.email, tt.patterns))
		})
	}
}

func TestHRValidator(t *testing.T) {
	v, err := NewHRValidator([]string{`careers@paytm\.com`, `campus@paytm\.com`, ""})
	require.NoError(t, err)

	assert.True(t, v.IsVerified("campus@paytm.com"))
	assert.True(t, v.IsVerified("jobs@somewhere.in"))
	assert.False(t, v.IsVerified("ceo@paytm.com"))
	assert.Equal(t, IsVerifiedHR("ceo@paytm.com", []string{""}), v.IsVerified("ceo@paytm.com"))

	got := v.Verified([]string{"ceo@paytm.com", "campus@paytm.com", "hr@paytm.com"})
	assert.Equal(t, []string{"campus@paytm.com", "hr@paytm.com"}, got)

	res := v.Verify([]string{"ceo@paytm.com"})
	require.Len(t, res, 1)
	assert.False(t, res[0].IsVerifiedHR)
}

func TestHRValidator_InvalidPattern(t *testing.T) {
	_, err := NewHRValidator([]string{`careers@(paytm`})
	require.Error(t, err)

	errs := ValidatePatterns([]string{`ok@x\.com`, `bad[`})
	assert.Len(t, errs, 1)
}

func TestHRValidator_Nil(t *testing.T) {
	var v *HRValidator
	assert.True(t, v.IsVerified("hr@x.com"))
	assert.False(t, v.IsVerified("bob@x.com"))
}
