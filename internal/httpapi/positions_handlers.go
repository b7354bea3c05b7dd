package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"fintechjobs-engine/internal/domain"
	"fintechjobs-engine/internal/store"
)

type PositionsHandler struct {
	DB *sql.DB
}

// List serves GET /positions?origin=observed|synthetic|all&sort=&verified=1&limit=
func (h PositionsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := store.ListOpts{Sort: q.Get("sort")}
	switch o := strings.ToLower(strings.TrimSpace(q.Get("origin"))); o {
	case "", string(domain.OriginObserved):
		opts.Origin = domain.OriginObserved
	case string(domain.OriginSynthetic):
		opts.Origin = domain.OriginSynthetic
	case "all":
	default:
		WriteError(w, r, http.StatusBadRequest, "bad_origin", "origin must be observed, synthetic or all")
		return
	}
	if v := q.Get("verified"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, "bad_verified", "verified must be a boolean")
			return
		}
		opts.VerifiedOnly = b
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, r, http.StatusBadRequest, "bad_limit", "limit must be a non-negative integer")
			return
		}
		opts.Limit = n
	}

	ps, err := store.ListPositions(r.Context(), h.DB, opts)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	if ps == nil {
		ps = []domain.Position{}
	}
	WriteJSON(w, http.StatusOK, ps)
}
