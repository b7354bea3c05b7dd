package careers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintechjobs-engine/internal/contact"
	"fintechjobs-engine/internal/domain"
)

const listingPage = `<html><body>
<h1>Careers at Paytm</h1>
<div class="job-card"><h3>Backend Developer</h3><span class="location">Noida</span><a href="/jobs/1">View</a></div>
<div class="job-card"><h3>SDE 1</h3><a href="/jobs/2">View</a></div>
<a class="apply-now" href="https://jobs.lever.co/paytm/abc">Apply</a>
<footer>Write to careers@paytm.com or call +91 98765 43210</footer>
</body></html>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/careers", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingPage))
	})
	mux.HandleFunc("/jobs/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
<div class="job-description">Fresher backend role in our payments team. Reach hr@paytm.com</div>
<a class="apply-now" href="/jobs/1/apply">Apply now</a>
</body></html>`))
	})
	mux.HandleFunc("/jobs/2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>This position has been filled.</p></body></html>`))
	})
	mux.HandleFunc("/fallback", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
<a href="/o/123">Software Engineer</a>
<a href="/o/about">About us</a>
</body></html>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchListingWithDetails(t *testing.T) {
	srv := newServer(t)
	s := New(Config{
		Companies: []Company{{Name: "Paytm", URLs: []string{srv.URL + "/careers"}}},
	}, nil)

	res, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "careers", res.Source)
	require.Len(t, res.Candidates, 1, "closed posting is skipped")

	c := res.Candidates[0]
	assert.Equal(t, "Backend Developer", c.Title)
	assert.Equal(t, "Paytm", c.Company)
	assert.Equal(t, "Noida", c.Location)
	assert.Equal(t, srv.URL+"/jobs/1", c.URL)
	assert.Equal(t, domain.OriginObserved, c.Origin)
	assert.Contains(t, c.Description, "Fresher backend role")
	assert.Contains(t, c.RawContactText, "hr@paytm.com")
	assert.Contains(t, c.RawContactText, "careers@paytm.com")
	assert.Contains(t, c.ApplyLinks, "https://jobs.lever.co/paytm/abc")
	assert.Contains(t, c.ApplyLinks, srv.URL+"/jobs/1/apply")
}

func TestFetchFallsBackToRoleAnchors(t *testing.T) {
	srv := newServer(t)
	s := New(Config{
		Companies:    []Company{{Name: "Groww", URLs: []string{srv.URL + "/fallback"}}},
		RoleKeywords: []string{"sde"},
		SkipDetails:  true,
	}, nil)

	res, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "Software Engineer", res.Candidates[0].Title)
	assert.Equal(t, srv.URL+"/o/123", res.Candidates[0].URL)
}

func TestFetchSkipsBrokenPages(t *testing.T) {
	srv := newServer(t)
	s := New(Config{
		Companies: []Company{
			{Name: "Nope", URLs: []string{srv.URL + "/missing"}},
			{Name: "Paytm", URLs: []string{srv.URL + "/careers"}},
		},
		SkipDetails: true,
		MaxJobs:     1,
	}, nil)

	res, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "Paytm", res.Candidates[0].Company)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`<div class="opening"><h2>SDE Intern</h2></div>`))
	}))
	defer srv.Close()

	s := New(Config{
		Companies:   []Company{{Name: "CRED", URLs: []string{srv.URL}}},
		Retries:     2,
		RetryWait:   time.Millisecond,
		SkipDetails: true,
	}, nil)

	res, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "SDE Intern", res.Candidates[0].Title)
	assert.EqualValues(t, 2, calls.Load())
}

func TestExtractApplyLinks(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body>
<a href="https://boards.greenhouse.io/razorpay/jobs/99">Open role</a>
<a href="mailto:jobs@razorpay.com">Mail us</a>
<button onclick="window.location='/apply/55'">Apply</button>
<form action="/careers/submit"></form>
<a href="/jobs/7#top">Job 7</a>
<a href="https://example.com/about">About</a>
</body></html>`))
	require.NoError(t, err)

	got := ExtractApplyLinks(doc, "https://razorpay.com/jobs/")
	assert.Equal(t, []string{
		"https://boards.greenhouse.io/razorpay/jobs/99",
		"https://razorpay.com/apply/55",
		"https://razorpay.com/careers/submit",
		"https://razorpay.com/jobs/7",
	}, got)
}

func TestFetchFindsContactsPastLongText(t *testing.T) {
	filler := strings.Repeat("We build payment rails for a billion users. ", 130)
	require.Greater(t, len(filler), 4000)

	mux := http.NewServeMux()
	mux.HandleFunc("/careers", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
<div class="job-card"><h3>Backend Developer</h3><a href="/jobs/1">View</a></div>
<p>` + filler + `</p>
<footer>Write to careers@paytm.com</footer>
</body></html>`))
	})
	mux.HandleFunc("/jobs/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
<div class="job-description">` + filler + ` Questions go to hr@paytm.com</div>
</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := New(Config{
		Companies: []Company{{Name: "Paytm", URLs: []string{srv.URL + "/careers"}}},
	}, nil)
	res, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)

	c := res.Candidates[0]
	assert.LessOrEqual(t, len([]rune(c.Description)), descTextLimit+3, "stored description stays short")
	emails := contact.ExtractContacts(c.RawContactText).Emails
	assert.Contains(t, emails, "careers@paytm.com")
	assert.Contains(t, emails, "hr@paytm.com")
	assert.NotContains(t, emails, "careers@paytm.co")
}
