package types

import (
	"context"

	"fintechjobs-engine/internal/domain"
)

// ScrapeResult is one source's batch. Finalize, when set, runs after the
// batch has been stored (e.g. flag mails as read).
type ScrapeResult struct {
	Source     string
	Candidates []domain.JobCandidate
	Finalize   func(context.Context) error
}

type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) (ScrapeResult, error)
}

// RunSummary is what one run reports back to the CLI.
type RunSummary struct {
	Sources   map[string]int `json:"sources"` // candidates seen per source
	Kept      int            `json:"kept"`
	Added     int            `json:"added"` // kept and newly stored
	Rejected  map[string]int `json:"rejected"`
	Synthetic bool           `json:"synthetic"` // synthetic fallback was used
}
