// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"

	"github.com/dalemusser/communityhub/internal/app/store/audit"
	"go.uber.org/zap"
)

// Querier is the read side of the audit store.
type Querier interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
	CountByFilter(ctx context.Context, filter audit.QueryFilter) (int64, error)
}

type Handler struct {
	Store Querier
	Log   *zap.Logger
}

// NewHandler constructs an Audit Log feature handler bound to the given
// store and logger.
func NewHandler(store Querier, logger *zap.Logger) *Handler {
	return &Handler{
		Store: store,
		Log:   logger,
	}
}
