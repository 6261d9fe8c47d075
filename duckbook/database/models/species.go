package models

import "github.com/uptrace/bun"

type Species struct {
	bun.BaseModel `bun:"table:species,alias:sp"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull,unique"`
}
