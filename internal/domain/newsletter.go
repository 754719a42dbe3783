package domain

import "time"

// BroadcastRequest describes one notification to deliver. Either TemplateID
// with substitutions or a pre-rendered HTML body may be supplied; when both
// are present the template wins.
type BroadcastRequest struct {
	Subject       string            `json:"subject" validate:"required"`
	HTML          string            `json:"html"`
	TemplateID    string            `json:"template_id"`
	Substitutions map[string]string `json:"substitutions"`
	// SkipNotifiedWithin, when > 0, excludes subscribers whose last confirmed
	// delivery is more recent than this window. Off by default: a re-run
	// resends to every active subscriber.
	SkipNotifiedWithin time.Duration `json:"skip_notified_within"`
}

// DeliveryFailure records one recipient-scoped delivery error.
type DeliveryFailure struct {
	Email       string `json:"email"`
	ErrorDetail string `json:"error_detail"`
}

// DispatchResult is the outcome of one dispatch run.
// SentCount + FailedCount equals the number of recipients actually attempted;
// with no mid-run cancellation that is TotalRecipients.
type DispatchResult struct {
	TotalRecipients int               `json:"total_recipients"`
	SentCount       int               `json:"sent_count"`
	FailedCount     int               `json:"failed_count"`
	Failures        []DeliveryFailure `json:"failures,omitempty"`
	Note            string            `json:"note,omitempty"`
	StartedAt       time.Time         `json:"started_at"`
	FinishedAt      time.Time         `json:"finished_at"`
}

// ItemSummary is a human-readable digest of one content item.
type ItemSummary struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Excerpt string    `json:"excerpt"`
	Date    time.Time `json:"date"`
}

// ContentPreview is what a broadcast would embed, for inspection before sending.
type ContentPreview struct {
	Posts       []ItemSummary `json:"posts"`
	Events      []ItemSummary `json:"events"`
	GeneratedAt time.Time     `json:"generated_at"`
}
