package mailer

import (
	"context"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun delivers rendered jobs.
type Mailgun struct {
	client *mg.MailgunImpl
	Sender string
}

// NewMailgun builds the client once. senderName is optional and is combined
// with the sender address as "Name <address>".
func NewMailgun(domain, apiKey, sender, senderName string) *Mailgun {
	from := sender
	if senderName != "" {
		from = fmt.Sprintf("%s <%s>", senderName, sender)
	}
	return &Mailgun{client: mg.NewMailgun(domain, apiKey), Sender: from}
}

// Send sends an email via Mailgun. html is optional; if provided it will be used as HTML body.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}

// Deliver sends a queued job.
func (m *Mailgun) Deliver(ctx context.Context, job EmailJob) error {
	return m.Send(ctx, job.To, job.Subject, job.Text, job.HTML)
}
