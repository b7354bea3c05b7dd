package httpapi

import "net/http"

func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{}.Health,
	}))

	ph := PositionsHandler{DB: d.DB}
	mux.HandleFunc("/positions", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ph.List,
	}))

	rh := RunHandler{Runner: d.Runner, CfgVal: d.CfgVal, BaseCtx: d.BaseCtx}
	mux.HandleFunc("/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: rh.Run,
	}))
	mux.HandleFunc("/run/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Status,
	}))

	ch := ConfigHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/config/check", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Check,
	}))

	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}

// Handler wraps the mux with the standard middleware chain.
func Handler(d Deps) http.Handler {
	return Chain(NewMux(d), RequestID, AccessLog, Recover, Cors)
}
