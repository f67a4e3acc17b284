package mailer

import (
	"fmt"

	"github.com/oksasatya/blogilista/pkg/helpers"
	tpl "github.com/oksasatya/blogilista/pkg/mailer/templates"
)

// EmailJob is a rendered message ready for sending.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html,omitempty"`
}

// ErrUnknownTemplate is returned for events without a template set.
var ErrUnknownTemplate = fmt.Errorf("no template for event")

// FromEvent renders the notification for ev addressed to to.
func FromEvent(appName, to string, ev helpers.Event) (EmailJob, error) {
	if !tpl.Known(ev.Type) {
		return EmailJob{}, fmt.Errorf("%w %q", ErrUnknownTemplate, ev.Type)
	}
	data := tpl.NewNotificationData(appName, ev.Type, ev.OccurredAt, ev.Data)
	subject, text, html, err := tpl.Render(ev.Type, data)
	if err != nil {
		return EmailJob{}, err
	}
	return EmailJob{To: to, Subject: subject, Text: text, HTML: html}, nil
}
