// config/overlay.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CompaniesFile is an optional companies.yml kept next to config.yml.
// Entries are merged into the config by company name (boards by slug);
// Replace drops the config's lists first.
type CompaniesFile struct {
	Replace   bool      `yaml:"replace"`
	Companies []Company `yaml:"companies"`
	Sources   struct {
		Greenhouse struct {
			Companies []Board `yaml:"companies"`
		} `yaml:"greenhouse"`
		Lever struct {
			Companies []Board `yaml:"companies"`
		} `yaml:"lever"`
	} `yaml:"sources"`
}

// OverlayCompanies applies companiesPath to cfg. A missing file is not an error.
func OverlayCompanies(cfg *Config, companiesPath string) error {
	b, err := os.ReadFile(companiesPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var cf CompaniesFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return fmt.Errorf("parse %s: %w", companiesPath, err)
	}

	if cf.Replace {
		cfg.Companies = nil
		cfg.Sources.Greenhouse.Companies = nil
		cfg.Sources.Lever.Companies = nil
	}
	cfg.Companies = mergeBy(cfg.Companies, cf.Companies, func(c Company) string { return c.Name })
	cfg.Sources.Greenhouse.Companies = mergeBy(cfg.Sources.Greenhouse.Companies, cf.Sources.Greenhouse.Companies, func(b Board) string { return b.Slug })
	cfg.Sources.Lever.Companies = mergeBy(cfg.Sources.Lever.Companies, cf.Sources.Lever.Companies, func(b Board) string { return b.Slug })
	return nil
}

// mergeBy replaces base entries whose key (case-insensitive) appears in
// extra and appends the rest, keeping base order.
func mergeBy[T any](base, extra []T, key func(T) string) []T {
	if len(extra) == 0 {
		return base
	}
	norm := func(v T) string { return strings.ToLower(strings.TrimSpace(key(v))) }

	idx := make(map[string]int, len(base))
	out := append([]T(nil), base...)
	for i, v := range out {
		idx[norm(v)] = i
	}
	for _, v := range extra {
		k := norm(v)
		if i, ok := idx[k]; ok && k != "" {
			out[i] = v
			continue
		}
		idx[k] = len(out)
		out = append(out, v)
	}
	return out
}
