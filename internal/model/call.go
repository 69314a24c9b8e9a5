package model

import "time"

// CallKind identifies which adapter operation an AI call served.
type CallKind string

const (
	KindDocument CallKind = "document"
	KindMarket   CallKind = "market"
)

// AnalysisCall tracks each outbound call to an AI backend for usage and
// cost monitoring. Only metadata is kept, never the document or the result.
type AnalysisCall struct {
	ID         int64     `db:"id" json:"id"`
	Kind       CallKind  `db:"kind" json:"kind"`
	Subject    string    `db:"subject" json:"subject"` // file name or ticker symbol
	Provider   string    `db:"provider" json:"provider"`
	Model      string    `db:"model" json:"model"`
	Success    bool      `db:"success" json:"success"`
	ErrorKind  *string   `db:"error_kind" json:"error_kind,omitempty"`
	DurationMs *int64    `db:"duration_ms" json:"duration_ms,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
