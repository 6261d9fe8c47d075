package models

import "time"

// UserSession is the authenticated identity carried in the signed
// session cookie.
type UserSession struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LegacyBookRequest is the body of the legacy booking endpoint.
type LegacyBookRequest struct {
	DuckID int64 `json:"duck_id"`
	CompID int64 `json:"comp_id"`
	Force  bool  `json:"force"`
}

// BookRequest is the body of the REST booking endpoint; the duck ID
// comes from the URL.
type BookRequest struct {
	Competence int64 `json:"competence"`
	Force      bool  `json:"force"`
}

// DonateRequest is the body of the duck donation endpoint. Zero IDs
// mean the field was absent.
type DonateRequest struct {
	Species  int64  `json:"species"`
	Location int64  `json:"location"`
	Color    string `json:"color"`
	Name     string `json:"name"`
}

// CompetenceRequest creates a new competence.
type CompetenceRequest struct {
	Name string `json:"name"`
}

// NameSuggestRequest suggests a name for a duck.
type NameSuggestRequest struct {
	Name string `json:"name"`
}

// NameVoteRequest casts a vote on a name suggestion.
type NameVoteRequest struct {
	Upvote bool `json:"upvote"`
}

// RegisterRequest creates a local account.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest authenticates a local account.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
