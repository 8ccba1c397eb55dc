package clients

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/mailersend/mailersend-go"
)

// Mailer sends plain text emails through MailerSend.
type Mailer struct {
	client    *mailersend.Mailersend
	fromEmail string
	fromName  string
}

func NewMailer(apiKey, fromEmail, fromName string) Mailer {
	return Mailer{
		client:    mailersend.NewMailersend(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (m Mailer) Send(ctx context.Context, recipient, subject, content string) error {
	message := m.client.Email.NewMessage()
	message.SetFrom(mailersend.From{
		Name:  m.fromName,
		Email: m.fromEmail,
	})
	message.SetRecipients([]mailersend.Recipient{
		{
			Email: recipient,
		},
	})
	message.SetSubject(subject)
	message.SetText(content)

	res, err := m.client.Email.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("send email request: %w", err)
	}

	if res.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected status code: %v", res.StatusCode)
	}

	log.FromContext(ctx).WithField("message_id", res.Header.Get("X-Message-Id")).Info("Email sent")

	return nil
}

// LogMailer only logs the emails it is asked to send.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, recipient, subject, _ string) error {
	log.FromContext(ctx).WithField("recipient", recipient).WithField("subject", subject).Info("Email not sent, mail delivery is not configured")
	return nil
}
