package models

import (
	"time"

	"github.com/uptrace/bun"
)

// DuckName is a name suggestion for an unnamed duck.
type DuckName struct {
	bun.BaseModel `bun:"table:duck_names,alias:dn"`

	ID          int64      `bun:"id,pk,autoincrement"`
	DuckID      int64      `bun:"duck_id,notnull"`
	Name        string     `bun:"name,notnull"`
	SuggestedBy int64      `bun:"suggested_by,notnull"`
	SuggestedAt time.Time  `bun:"suggested_at,notnull,default:current_timestamp"`
	ClosedBy    *int64     `bun:"closed_by"`
	ClosedAt    *time.Time `bun:"closed_at"`

	Votes []*DuckNameVote `bun:"rel:has-many,join:id=duck_name_id"`
}

// Closed reports whether voting on this suggestion has ended.
func (n *DuckName) Closed() bool {
	return n.ClosedAt != nil
}

type DuckNameVote struct {
	bun.BaseModel `bun:"table:duck_name_votes,alias:dnv"`

	ID         int64     `bun:"id,pk,autoincrement"`
	DuckNameID int64     `bun:"duck_name_id,notnull"`
	VoterID    int64     `bun:"voter_id,notnull"`
	VoteTS     time.Time `bun:"vote_ts,notnull,default:current_timestamp"`
	Upvote     bool      `bun:"upvote,notnull,default:true"`
}
