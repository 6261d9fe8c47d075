package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Competence struct {
	bun.BaseModel `bun:"table:competences,alias:c"`

	ID      int64     `bun:"id,pk,autoincrement"`
	Name    string    `bun:"name,notnull,unique"`
	AddedBy int64     `bun:"added_by,notnull"`
	AddedAt time.Time `bun:"added_at,notnull,default:current_timestamp"`
}
