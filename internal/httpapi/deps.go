package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"fintechjobs-engine/internal/events"
	"fintechjobs-engine/internal/poll"
)

type Deps struct {
	DB *sql.DB

	Hub    *events.Hub
	Runner *poll.Runner

	// CfgVal stores config.Config; swapped on reload.
	CfgVal *atomic.Value

	// BaseCtx parents background runs so they outlive the request.
	BaseCtx context.Context
}
