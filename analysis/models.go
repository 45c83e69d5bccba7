// Package analysis stores and lists skin analysis records and talks to the
// external AI detection service. Every record is owned by exactly one user,
// resolved from the validated session at creation time.
package analysis

import "time"

// Analysis is one stored analysis record.
type Analysis struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"userId"`
	ImageURL        string    `json:"imageUrl"`
	PimpleCount     int       `json:"pimpleCount"`
	Recommendations *string   `json:"recommendations"`
	CreatedAt       time.Time `json:"createdAt"`
}

// SaveRequest is the payload for persisting an analysis.
// PimpleCount is a pointer so "field absent" is distinguishable from zero.
type SaveRequest struct {
	ImageURL        string  `json:"imageUrl"`
	PimpleCount     *int    `json:"pimpleCount"`
	Recommendations *string `json:"recommendations"`
}

// SaveResponse is returned after persisting an analysis.
type SaveResponse struct {
	Success  bool      `json:"success"`
	Analysis *Analysis `json:"analysis"`
}

// HistoryResponse lists the caller's analyses, newest first.
type HistoryResponse struct {
	Analyses []Analysis `json:"analyses"`
}
