package httpapi

import (
	"net/http"
	"sync/atomic"

	"fintechjobs-engine/internal/config"
)

type ConfigHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

// Check reports validation errors and warnings of the loaded config.
func (h ConfigHandler) Check(w http.ResponseWriter, r *http.Request) {
	cur, ok := h.CfgVal.Load().(config.Config)
	if !ok {
		WriteError(w, r, http.StatusServiceUnavailable, "no_config", "config not loaded")
		return
	}
	_, vr := config.NormalizeAndValidate(cur)
	if vr.Errors == nil {
		vr.Errors = []string{}
	}
	if vr.Warnings == nil {
		vr.Warnings = []string{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":       vr.OK(),
		"errors":   vr.Errors,
		"warnings": vr.Warnings,
	})
}
