package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, job EmailJob) error
}

// Mailgun sends mail through the Mailgun API.
type Mailgun struct {
	Sender string
	client *mg.MailgunImpl
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Sender: sender, client: mg.NewMailgun(domain, apiKey)}
}

// SetAPIBase points the client at another API endpoint, e.g. the EU region.
func (m *Mailgun) SetAPIBase(url string) { m.client.SetAPIBase(url) }

// Send sends job via Mailgun. HTML is optional.
func (m *Mailgun) Send(ctx context.Context, job EmailJob) error {
	msg := m.client.NewMessage(m.Sender, job.Subject, job.Text, job.To)
	if job.HTML != "" {
		msg.SetHtml(job.HTML)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}
