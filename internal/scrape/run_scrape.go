package scrape

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"fintechjobs-engine/internal/config"
	"fintechjobs-engine/internal/dedup"
	"fintechjobs-engine/internal/pipeline"
	"fintechjobs-engine/internal/scrape/synthetic"
	"fintechjobs-engine/internal/scrape/types"
	"fintechjobs-engine/internal/scrape/util"
	"fintechjobs-engine/internal/store"

	"golang.org/x/sync/errgroup"
)

var insertPosition = store.InsertPosition

type RunOptions struct {
	// Fresh skips seeding the seen-set from stored positions.
	Fresh bool
	// Fetchers replaces the sources built from cfg.
	Fetchers []types.Fetcher
	// Fallback replaces the synthetic sample source.
	Fallback types.Fetcher
}

// RunOnce fans the sources out, feeds every candidate through one
// pipeline from a single consumer and stores the kept positions.
func RunOnce(ctx context.Context, db *sql.DB, cfg config.Config, opts RunOptions) (types.RunSummary, error) {
	sum := types.RunSummary{Sources: map[string]int{}}
	if db == nil {
		return sum, errors.New("db is nil")
	}

	seen := dedup.New()
	if !opts.Fresh {
		keys, err := store.LoadDedupKeys(ctx, db)
		if err != nil {
			return sum, fmt.Errorf("load dedup keys: %w", err)
		}
		seen.Seed(keys)
		log.Printf("[run] seeded %d known positions", len(keys))
	}

	pipe, err := pipeline.New(cfg, seen)
	if err != nil {
		return sum, fmt.Errorf("build pipeline: %w", err)
	}

	fetchers := opts.Fetchers
	if fetchers == nil {
		fetchers = BuildFetchers(cfg, util.NewHostLimiter(cfg.Run.RequestsPerSecond, cfg.Run.Burst))
	}

	timeout := time.Duration(cfg.Run.SourceTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	var g errgroup.Group
	results := make(chan types.ScrapeResult, len(fetchers))
	for _, f := range fetchers {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			log.Printf("[%s] Running...", f.Name())
			res, err := f.Fetch(fctx)
			if err != nil {
				log.Printf("[%s] error: %v", f.Name(), err)
				// partial batches are still worth processing
				if len(res.Candidates) == 0 {
					return nil // best-effort: don't cancel siblings
				}
			}
			if res.Source == "" {
				res.Source = f.Name()
			}
			results <- res
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	var finals []func(context.Context) error
	for res := range results {
		log.Printf("[run] got source=%s candidates=%d finalize=%v",
			res.Source, len(res.Candidates), res.Finalize != nil)
		consume(ctx, db, pipe, cfg, res, &sum)
		if res.Finalize != nil {
			finals = append(finals, res.Finalize)
		}
	}

	// after storing, so a crash never marks unprocessed mail as read
	for _, fin := range finals {
		if err := fin(ctx); err != nil {
			log.Printf("[run] finalize error: %v", err)
		}
	}

	if sum.Kept == 0 && cfg.Run.SyntheticFallback {
		fb := opts.Fallback
		if fb == nil {
			fb = synthetic.New()
		}
		log.Printf("[run] no observed positions kept, using %s fallback", fb.Name())
		res, err := fb.Fetch(ctx)
		if err != nil {
			return sum, fmt.Errorf("fallback %s: %w", fb.Name(), err)
		}
		if res.Source == "" {
			res.Source = fb.Name()
		}
		consume(ctx, db, pipe, cfg, res, &sum)
		sum.Synthetic = true
	}

	_, sum.Rejected = pipe.Snapshot()
	log.Printf("[run] done kept=%d added=%d rejected=%v synthetic=%v",
		sum.Kept, sum.Added, sum.Rejected, sum.Synthetic)
	return sum, ctx.Err()
}

func consume(ctx context.Context, db *sql.DB, pipe *pipeline.Pipeline, cfg config.Config, res types.ScrapeResult, sum *types.RunSummary) {
	cands := res.Candidates
	if limit := cfg.Run.MaxJobsPerSource; limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}
	sum.Sources[res.Source] += len(cands)

	for _, c := range cands {
		if c.Source == "" {
			c.Source = res.Source
		}
		pos, v := pipe.Process(c)
		if !v.Kept {
			log.Printf("[%s] skipped (%s) company=%q title=%q", res.Source, v.Reason, c.Company, c.Title)
			continue
		}
		added, err := insertPosition(ctx, db, pos)
		if err != nil {
			// unstored, so a later copy in this run may still be kept
			pipe.Seen().Forget(pos.Company, pos.Title)
			log.Printf("[%s] insert error company=%q title=%q: %v", res.Source, pos.Company, pos.Title, err)
			continue
		}
		sum.Kept++
		if added {
			sum.Added++
		}
	}
}
