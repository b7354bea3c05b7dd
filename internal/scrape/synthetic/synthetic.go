// Package synthetic serves built-in sample openings when a run observed
// nothing. Everything it returns is tagged origin=synthetic.
package synthetic

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"strings"

	"fintechjobs-engine/internal/domain"
	"fintechjobs-engine/internal/scrape/types"

	"gopkg.in/yaml.v3"
)

//go:embed samples.yml
var samplesYAML []byte

type sample struct {
	Company     string `yaml:"company"`
	Title       string `yaml:"title"`
	Location    string `yaml:"location"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
	Contact     string `yaml:"contact"`
}

type Source struct{}

func New() *Source { return &Source{} }

func (s *Source) Name() string { return "synthetic" }

func (s *Source) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	if err := ctx.Err(); err != nil {
		return types.ScrapeResult{}, err
	}
	cands, err := Samples()
	if err != nil {
		return types.ScrapeResult{}, err
	}
	log.Printf("[synthetic] serving %d sample records", len(cands))
	return types.ScrapeResult{Source: s.Name(), Candidates: cands}, nil
}

// Samples decodes the embedded sample set.
func Samples() ([]domain.JobCandidate, error) {
	var raw []sample
	if err := yaml.Unmarshal(samplesYAML, &raw); err != nil {
		return nil, fmt.Errorf("decode samples: %w", err)
	}
	out := make([]domain.JobCandidate, 0, len(raw))
	for _, r := range raw {
		out = append(out, domain.JobCandidate{
			Title:          r.Title,
			Company:        r.Company,
			Description:    strings.TrimSpace(r.Description),
			RawContactText: strings.Join([]string{r.Title, r.Description, r.Contact}, " "),
			Location:       r.Location,
			URL:            r.URL,
			ApplyLinks:     []string{r.URL},
			Source:         "synthetic",
			Origin:         domain.OriginSynthetic,
		})
	}
	return out, nil
}
