// Package notify sends the registration notification email.
package notify

import (
	"fmt"
	"html"

	"github.com/shashiranjanraj/vanijya/app/models"
	"github.com/shashiranjanraj/vanijya/pkg/mail"
	"github.com/shashiranjanraj/vanijya/pkg/metrics"
)

// Notifier delivers a notification for one submitted registration request.
type Notifier interface {
	RegistrationSubmitted(req *models.RegistrationRequest) error
}

// MailNotifier sends the notification to a fixed inbox over SMTP, with
// Reply-To set to the submitter so the team can answer directly.
type MailNotifier struct {
	Inbox string
}

func NewMailNotifier(inbox string) *MailNotifier {
	return &MailNotifier{Inbox: inbox}
}

func (n *MailNotifier) RegistrationSubmitted(req *models.RegistrationRequest) error {
	body := fmt.Sprintf(
		`<h2>New service request</h2>
<p><b>Name:</b> %s</p>
<p><b>Phone:</b> %s</p>
<p><b>Email:</b> %s</p>
<p><b>Website type:</b> %s</p>
<p><b>Description:</b> %s</p>`,
		html.EscapeString(req.Name),
		html.EscapeString(req.Phone),
		html.EscapeString(req.Email),
		html.EscapeString(req.WebsiteType),
		html.EscapeString(req.Description),
	)

	err := mail.To(n.Inbox).
		ReplyTo(req.Email).
		Subject("New service request from "+req.Name).
		Body(body).
		Send()

	if err != nil {
		metrics.MailsSent.WithLabelValues("failed").Inc()
		return err
	}
	metrics.MailsSent.WithLabelValues("sent").Inc()
	return nil
}
