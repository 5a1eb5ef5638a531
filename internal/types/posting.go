// Package types defines the core data structures shared across the pipeline.
package types

import "time"

// SubmissionStatus classifies the terminal outcome of one posting's submission attempt.
type SubmissionStatus string

// Submission status values. NotAttempted is the zero value for postings
// that never reached the submission engine.
const (
	StatusNotAttempted SubmissionStatus = "not_attempted"
	StatusPrepared     SubmissionStatus = "prepared"
	StatusSubmitted    SubmissionStatus = "submitted"
	StatusSkipped      SubmissionStatus = "skipped"
	StatusFailed       SubmissionStatus = "failed"
)

// Posting is a normalized freelance-gig record produced by a marketplace adapter.
// It accumulates pipeline state (reply, submission outcome) as it flows through
// the orchestrator. The JSON tags define the snapshot schema written at the end
// of every run.
type Posting struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Link        string    `json:"link"`
	DiscoveredAt time.Time `json:"timestamp"`

	// PriceValue is the best-effort numeric parse of Price. A nil value means
	// the display string could not be parsed; such postings are never dropped
	// on price grounds.
	PriceValue *float64 `json:"price_value,omitempty"`

	ReplyText      string     `json:"response,omitempty"`
	ReplyGenerated bool       `json:"response_generated"`
	ReplyTimestamp *time.Time `json:"response_timestamp,omitempty"`

	SubmissionStatus  SubmissionStatus `json:"submission_status"`
	SubmissionMessage string           `json:"submission_message,omitempty"`
}

// Key returns the identity of a posting, unique per (source, id) pair.
func (p *Posting) Key() string {
	return p.Source + "/" + p.ID
}
