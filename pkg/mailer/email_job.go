package mailer

import (
	"time"

	"github.com/google/uuid"
)

// EmailJob is one queued email. A job carries either a Template with Data
// or a literal Subject with Text and/or HTML.
type EmailJob struct {
	ID       string         `json:"id,omitempty"`
	QueuedAt time.Time      `json:"queued_at,omitempty"`
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// NewTemplateJob stamps a templated job with a fresh id.
func NewTemplateJob(to, template string, data map[string]any, now time.Time) EmailJob {
	return EmailJob{
		ID:       uuid.NewString(),
		QueuedAt: now.UTC(),
		To:       to,
		Template: template,
		Data:     data,
	}
}
