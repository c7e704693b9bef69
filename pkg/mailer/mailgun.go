package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Mailgun delivers through the Mailgun HTTP API. Each send is capped at
// Timeout.
type Mailgun struct {
	From    string
	Timeout time.Duration
	api     *mg.MailgunImpl
}

func NewMailgun(domain, apiKey, from string) *Mailgun {
	return &Mailgun{From: from, Timeout: 10 * time.Second, api: mg.NewMailgun(domain, apiKey)}
}

func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.api.NewMessage(m.From, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	if _, _, err := m.api.Send(ctx, msg); err != nil {
		return err
	}
	return nil
}

var _ Sender = (*Mailgun)(nil)
