package domain

import "time"

type Origin string

const (
	OriginObserved  Origin = "observed"
	OriginSynthetic Origin = "synthetic" // fallback sample data, never scraped
)

// JobCandidate is one observed posting before filtering.
type JobCandidate struct {
	Title          string
	Company        string
	Description    string
	RawContactText string // title+description(+company) when empty

	Location   string
	URL        string
	ApplyLinks []string
	Source     string // careers/greenhouse/lever/email/synthetic
	Origin     Origin
	PostedAt   *time.Time
}

// ContactText returns the text contacts are extracted from.
func (c JobCandidate) ContactText() string {
	if c.RawContactText != "" {
		return c.RawContactText
	}
	return c.Title + " " + c.Description + " " + c.Company
}

type ExtractedContact struct {
	Emails []string
	Phones []string
}

type HRVerification struct {
	Email        string
	IsVerifiedHR bool
}

type RelevanceDecision struct {
	MatchesDomain    bool
	MatchesSeniority bool
	MatchesRole      bool
	Excluded         bool
	Admitted         bool
	Reason           string // empty when admitted
}

type ApplyMethod string

const (
	ApplyNone   ApplyMethod = "none"
	ApplyEmail  ApplyMethod = "email"
	ApplyPortal ApplyMethod = "portal"
	ApplyBoth   ApplyMethod = "both"
)

// Position is an admitted, deduplicated candidate with its contact data.
type Position struct {
	ID            int64       `json:"id"`
	Company       string      `json:"company"`
	Title         string      `json:"title"`
	Location      string      `json:"location"`
	Description   string      `json:"description"`
	URL           string      `json:"url"`
	ApplyLinks    []string    `json:"applyLinks"`
	Emails        []string    `json:"emails"`
	HREmails      []string    `json:"hrEmails"`
	Phones        []string    `json:"phones"`
	EmailVerified bool        `json:"emailVerified"`
	ApplyMethod   ApplyMethod `json:"applyMethod"`
	Source        string      `json:"source"`
	Origin        Origin      `json:"origin"`
	ScrapedAt     time.Time   `json:"scrapedAt"`
}

func ApplyMethodFor(hrEmails, applyLinks []string, url string) ApplyMethod {
	hasEmail := len(hrEmails) > 0
	hasPortal := len(applyLinks) > 0 || url != ""
	switch {
	case hasEmail && hasPortal:
		return ApplyBoth
	case hasEmail:
		return ApplyEmail
	case hasPortal:
		return ApplyPortal
	default:
		return ApplyNone
	}
}
