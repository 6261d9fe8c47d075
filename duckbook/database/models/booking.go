package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Booking is a time-bounded claim of a duck by a user. A nil EndTS
// marks the booking as active; a duck may have at most one of those.
type Booking struct {
	bun.BaseModel `bun:"table:bookings,alias:b"`

	ID         int64      `bun:"id,pk,autoincrement"`
	DuckID     int64      `bun:"duck_id,notnull"`
	UserID     int64      `bun:"user_id,notnull"`
	CompReqID  int64      `bun:"comp_req_id,notnull"`
	StartTS    time.Time  `bun:"start_ts,notnull,default:current_timestamp"`
	EndTS      *time.Time `bun:"end_ts"`
	Successful bool       `bun:"successful,notnull,default:true"`
}

// Active reports whether the booking has not been terminated yet.
func (b *Booking) Active() bool {
	return b.EndTS == nil
}

// Duration returns the booked time span for terminated bookings and
// zero for active ones.
func (b *Booking) Duration() time.Duration {
	if b.EndTS == nil {
		return 0
	}
	return b.EndTS.Sub(b.StartTS)
}
