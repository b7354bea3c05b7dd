package httpapi

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"fintechjobs-engine/internal/config"
	"fintechjobs-engine/internal/poll"
)

type RunHandler struct {
	Runner  *poll.Runner
	CfgVal  *atomic.Value // config.Config
	BaseCtx context.Context
}

func (h RunHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Runner.Status())
}

// Run starts a background run and answers 202, or 409 while one is active.
func (h RunHandler) Run(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.CfgVal.Load().(config.Config)
	if !ok {
		WriteError(w, r, http.StatusServiceUnavailable, "no_config", "config not loaded")
		return
	}
	ctx := h.BaseCtx
	if ctx == nil {
		ctx = context.Background()
	}

	err := h.Runner.Start(ctx, RequestIDFrom(r.Context()), cfg)
	if errors.Is(err, poll.ErrRunning) {
		WriteError(w, r, http.StatusConflict, "already_running", err.Error())
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "run_failed", err.Error())
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
