package poll

import (
	"context"
	"sync/atomic"
	"time"

	"fintechjobs-engine/internal/config"
	"fintechjobs-engine/internal/scheduler"
)

// StartPoller re-runs every interval with the current config until ctx is
// done. Ticks with no source enabled, or while a manual run holds the
// slot, are skipped.
func StartPoller(ctx context.Context, interval time.Duration, cfgVal *atomic.Value, r *Runner) {
	scheduler.Every(ctx, interval, "poll", func(ctx context.Context) error {
		cfg, ok := cfgVal.Load().(config.Config)
		if !ok || !AnySourceEnabled(cfg) {
			return nil
		}
		// failures are logged and kept in Status by the runner
		_, _ = r.RunOnce(ctx, "", cfg)
		return nil
	})
}

func AnySourceEnabled(cfg config.Config) bool {
	s := cfg.Sources
	return s.Careers.Enabled || s.Greenhouse.Enabled || s.Lever.Enabled ||
		cfg.Email.Enabled || cfg.Run.SyntheticFallback
}
