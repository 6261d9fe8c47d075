package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Duck is a physical rubber duck registered in the pool. Name is
// optional until the naming votes settle on one.
type Duck struct {
	bun.BaseModel `bun:"table:ducks,alias:d"`

	ID             int64      `bun:"id,pk,autoincrement"`
	Name           string     `bun:"name,nullzero"`
	Color          string     `bun:"color,notnull"`
	SpeciesID      int64      `bun:"species_id,notnull"`
	LocationID     int64      `bun:"location_id,notnull"`
	DonatedBy      int64      `bun:"donated_by,notnull"`
	DonatedAt      time.Time  `bun:"donated_at,notnull,default:current_timestamp"`
	AdoptedBy      *int64     `bun:"adopted_by"`
	AdoptedAt      *time.Time `bun:"adopted_at"`
	OnHolidaySince *time.Time `bun:"on_holiday_since"`
	OnHolidayUntil *time.Time `bun:"on_holiday_until"`
	PhotoKey       string     `bun:"photo_key,nullzero"`

	Species     *Species          `bun:"rel:belongs-to,join:species_id=id"`
	Location    *Location         `bun:"rel:belongs-to,join:location_id=id"`
	Competences []*DuckCompetence `bun:"rel:has-many,join:id=duck_id"`
}

// DisplayName returns the duck name or a placeholder for unnamed ducks.
func (d *Duck) DisplayName() string {
	if d.Name == "" {
		return "Unnamed :("
	}
	return d.Name
}

// Age returns the seconds since the duck was donated, or -1 when the
// donation timestamp lies in the future.
func (d *Duck) Age(now time.Time) float64 {
	seconds := now.Sub(d.DonatedAt).Seconds()
	if seconds < 0 {
		return -1
	}
	return seconds
}

// OnHoliday reports whether the duck is within its holiday window.
func (d *Duck) OnHoliday(now time.Time) bool {
	if d.OnHolidaySince == nil {
		return false
	}
	if now.Before(*d.OnHolidaySince) {
		return false
	}
	return d.OnHolidayUntil == nil || now.Before(*d.OnHolidayUntil)
}
