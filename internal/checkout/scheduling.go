package checkout

import (
	"fmt"
	"time"

	"knowledge-cafe/internal/domain"
)

// Hours is the café's business-hour policy in its local timezone. Scheduling
// is validated once, at order creation; later policy changes never
// re-validate placed orders.
type Hours struct {
	Loc     *time.Location
	Open    int // first hour orders are prepared, inclusive
	Close   int // hour the café closes, exclusive
	MaxDays int // scheduling window in days
}

func (h Hours) withinHours(t time.Time) bool {
	hour := t.In(h.Loc).Hour()
	return hour >= h.Open && hour < h.Close
}

// ValidateScheduling checks the choice against business hours and the
// advance window. Immediate orders outside opening hours are rejected; the
// caller re-prompts for a scheduled slot.
func (h Hours) ValidateScheduling(s domain.Scheduling, now time.Time) error {
	switch s.Type {
	case domain.SchedulingImmediate:
		if !h.withinHours(now) {
			return domain.Invalid("scheduling", fmt.Sprintf("café is closed right now; pick a pickup slot between %02d:00 and %02d:00", h.Open, h.Close))
		}
		return nil
	case domain.SchedulingScheduled:
		if s.ScheduledFor.IsZero() {
			return domain.Invalid("scheduling", "pickup time is required")
		}
		if !s.ScheduledFor.After(now) {
			return domain.Invalid("scheduling", "pickup time must be in the future")
		}
		if s.ScheduledFor.After(now.AddDate(0, 0, h.MaxDays)) {
			return domain.Invalid("scheduling", fmt.Sprintf("orders can be scheduled at most %d days ahead", h.MaxDays))
		}
		if !h.withinHours(s.ScheduledFor) {
			return domain.Invalid("scheduling", "pickup time must fall within business hours")
		}
		return nil
	default:
		return domain.Invalid("scheduling", "unknown scheduling type")
	}
}
