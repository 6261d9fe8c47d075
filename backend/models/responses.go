package models

import "time"

// APIResponse is the standard envelope for non-domain API responses.
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func NewSuccessResponse(data interface{}, message string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func NewErrorResponse(code, message string, details map[string]string) *APIResponse {
	return &APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now(),
	}
}

// DuckResponse is the duck representation returned by the JSON API.
type DuckResponse struct {
	ID          int64                 `json:"id"`
	Name        string                `json:"name"`
	Color       string                `json:"color"`
	Species     string                `json:"species,omitempty"`
	Location    string                `json:"location,omitempty"`
	AgeSeconds  float64               `json:"age_seconds"`
	Age         string                `json:"age"`
	DPX         float64               `json:"dpx"`
	BookedBy    *int64                `json:"booked_by"`
	OnHoliday   bool                  `json:"on_holiday"`
	PhotoURL    string                `json:"photo_url,omitempty"`
	Competences []*CompetenceResponse `json:"competences,omitempty"`
}

// CompetenceResponse is a duck's competence with its derived level.
type CompetenceResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Level       int    `json:"level"`
	UpMinutes   int64  `json:"up_minutes"`
	DownMinutes int64  `json:"down_minutes"`
}

// NameTallyResponse is a name suggestion with its vote counts.
type NameTallyResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
	Closed    bool   `json:"closed"`
}
