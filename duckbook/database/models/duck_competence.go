package models

import "github.com/uptrace/bun"

// DuckCompetence accumulates per-duck, per-competence usage minutes.
// The (duck, comp) pair is unique.
type DuckCompetence struct {
	bun.BaseModel `bun:"table:duck_competences,alias:dc"`

	ID          int64 `bun:"id,pk,autoincrement"`
	DuckID      int64 `bun:"duck_id,notnull"`
	CompID      int64 `bun:"comp_id,notnull"`
	UpMinutes   int64 `bun:"up_minutes,notnull,default:0"`
	DownMinutes int64 `bun:"down_minutes,notnull,default:0"`

	Comp *Competence `bun:"rel:belongs-to,join:comp_id=id"`
}
