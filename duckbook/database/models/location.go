package models

import "github.com/uptrace/bun"

type Location struct {
	bun.BaseModel `bun:"table:locations,alias:loc"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
}
