package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mailtpl "github.com/oksasatya/blood-donor-registry/pkg/mailer/templates"
)

// ErrPermanent marks a job that will never succeed; it should be dropped
// rather than requeued.
var ErrPermanent = errors.New("permanent email failure")

// Worker renders queued jobs and hands them to a Sender.
type Worker struct {
	sender   Sender
	prepare  func(*EmailJob)
	fallback func(*EmailJob) string
}

// NewWorker builds a Worker. prepare fills defaults on each decoded job;
// fallback supplies a subject when none was rendered. Both may be nil.
func NewWorker(sender Sender, prepare func(*EmailJob), fallback func(*EmailJob) string) *Worker {
	return &Worker{sender: sender, prepare: prepare, fallback: fallback}
}

// Process decodes, renders and sends one job. Errors wrapping ErrPermanent
// mean the message is malformed; other errors are delivery failures.
func (w *Worker) Process(ctx context.Context, body []byte) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrPermanent, err)
	}
	if strings.TrimSpace(job.To) == "" {
		return fmt.Errorf("%w: missing recipient", ErrPermanent)
	}
	if w.prepare != nil {
		w.prepare(&job)
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		name := strings.ToLower(job.Template)
		if !mailtpl.Known(name) {
			return fmt.Errorf("%w: unknown template %q", ErrPermanent, job.Template)
		}
		s, t, h, err := mailtpl.Render(name, job.Data)
		if err != nil {
			return fmt.Errorf("%w: render %s: %v", ErrPermanent, name, err)
		}
		subject, text, html = s, t, h
	}
	subject = strings.TrimSpace(subject)
	if subject == "" && w.fallback != nil {
		subject = w.fallback(&job)
	}
	if text == "" && html == "" {
		return fmt.Errorf("%w: empty body", ErrPermanent)
	}

	if err := w.sender.Send(ctx, job.To, subject, text, html); err != nil {
		return fmt.Errorf("send job %q to %s: %w", job.ID, job.To, err)
	}
	return nil
}
