// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/communityhub/internal/app/store/audit"
	"github.com/dalemusser/communityhub/internal/app/system/paging"
	"github.com/dalemusser/communityhub/internal/app/system/respond"
	"github.com/dalemusser/communityhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

type listData struct {
	Items   []audit.Event `json:"items"`
	Total   int64         `json:"total"`
	HasPrev bool          `json:"has_prev"`
	HasNext bool          `json:"has_next"`
	Range   paging.Range  `json:"range"`
}

// ServeList handles GET /audit with optional filters:
// category, event_type, kind, target_id, actor, success (true/false),
// start_date and end_date (YYYY-MM-DD, inclusive), start and size.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "audit log list")
	defer cancel()

	start, size := paging.ParseStart(r), paging.ParseSize(r)
	filter := audit.QueryFilter{
		Category:   query.Get(r, "category"),
		EventType:  query.Get(r, "event_type"),
		Kind:       query.Get(r, "kind"),
		TargetID:   query.Get(r, "target_id"),
		ActorEmail: query.Get(r, "actor"),
		Limit:      int64(size),
		Offset:     int64(start - 1),
	}
	if s := query.Get(r, "success"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			respond.Error(w, r, h.Log, &respond.BadRequestError{Err: err})
			return
		}
		filter.Success = &b
	}
	if s := query.Get(r, "start_date"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.StartTime = &t
		}
	}
	if s := query.Get(r, "end_date"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			// End of day
			endOfDay := t.Add(24*time.Hour - time.Second)
			filter.EndTime = &endOfDay
		}
	}

	events, err := h.Store.Query(ctx, filter)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		respond.Error(w, r, h.Log, err)
		return
	}
	total, err := h.Store.CountByFilter(ctx, filter)
	if err != nil {
		h.Log.Error("failed to count audit events", zap.Error(err))
		respond.Error(w, r, h.Log, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	respond.OK(w, listData{
		Items:   events,
		Total:   total,
		HasPrev: start > 1,
		HasNext: int64(start-1+len(events)) < total,
		Range:   paging.ComputeRangeSize(start, len(events), size),
	})
}
