// Package poll owns the single in-process run slot used by engine serve:
// manual triggers and the periodic poller share it and its status.
package poll

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"fintechjobs-engine/internal/config"
	"fintechjobs-engine/internal/events"
	"fintechjobs-engine/internal/scrape/types"
)

var ErrRunning = errors.New("a run is already in progress")

type RunFunc func(ctx context.Context, cfg config.Config) (types.RunSummary, error)

type Status struct {
	LastRunAt string            `json:"last_run_at"`
	LastOkAt  string            `json:"last_ok_at"`
	LastError string            `json:"last_error"`
	Last      *types.RunSummary `json:"last,omitempty"`
	Running   bool              `json:"running"`
}

type Runner struct {
	run RunFunc
	hub *events.Hub
	now func() time.Time

	mu sync.Mutex
	st Status
	wg sync.WaitGroup
}

func NewRunner(run RunFunc, hub *events.Hub) *Runner {
	return &Runner{run: run, hub: hub, now: time.Now}
}

func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st
}

func (r *Runner) begin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.st.Running {
		return false
	}
	r.st.Running = true
	r.st.LastRunAt = r.now().Format(time.RFC3339)
	return true
}

func (r *Runner) finish(reqID string, sum types.RunSummary, err error) {
	r.mu.Lock()
	r.st.Running = false
	if err != nil {
		r.st.LastError = err.Error()
	} else {
		r.st.LastError = ""
		r.st.LastOkAt = r.now().Format(time.RFC3339)
		r.st.Last = &sum
	}
	r.mu.Unlock()

	if err != nil {
		log.Printf("[poll] error: %v", err)
		r.hub.Publish(reqID, events.TypeRunFailed, map[string]string{"error": err.Error()})
		return
	}
	log.Printf("[poll] ok kept=%d added=%d", sum.Kept, sum.Added)
	r.hub.Publish(reqID, events.TypeRunFinished, sum)
}

// RunOnce runs synchronously, or returns ErrRunning when the slot is taken.
func (r *Runner) RunOnce(ctx context.Context, reqID string, cfg config.Config) (types.RunSummary, error) {
	if !r.begin() {
		return types.RunSummary{}, ErrRunning
	}
	r.hub.Publish(reqID, events.TypeRunStarted, nil)
	sum, err := r.run(ctx, cfg)
	r.finish(reqID, sum, err)
	return sum, err
}

// Start runs in the background. ctx should outlive the caller's request.
func (r *Runner) Start(ctx context.Context, reqID string, cfg config.Config) error {
	if !r.begin() {
		return ErrRunning
	}
	r.hub.Publish(reqID, events.TypeRunStarted, nil)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		sum, err := r.run(ctx, cfg)
		r.finish(reqID, sum, err)
	}()
	return nil
}

// Wait blocks until background runs started with Start have returned.
func (r *Runner) Wait() { r.wg.Wait() }
