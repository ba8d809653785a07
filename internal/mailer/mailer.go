// Package mailer delivers one-time verification codes by email.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mailersend/mailersend-go"
)

// Mailer sends a verification code to an address.
type Mailer interface {
	SendCode(ctx context.Context, to, code string) error
}

// MailerSend delivers codes through the MailerSend API.
type MailerSend struct {
	client    *mailersend.Mailersend
	fromName  string
	fromEmail string
}

// NewMailerSend constructs a MailerSend mailer.
func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSend {
	return &MailerSend{
		client:    mailersend.NewMailersend(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// SendCode emails the 6-digit code. The wizard treats any error here as
// terminal for the attempt; the user stays on the info step and may resubmit.
func (m *MailerSend) SendCode(ctx context.Context, to, code string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	message := m.client.Email.NewMessage()
	message.SetFrom(mailersend.From{Name: m.fromName, Email: m.fromEmail})
	message.SetRecipients([]mailersend.Recipient{{Email: to}})
	message.SetSubject("کد تأیید هچ")
	message.SetHTML(fmt.Sprintf(
		`<p>کد تأیید شما:</p><h2 dir="ltr">%s</h2><p>این کد تا ۵ دقیقه معتبره.</p>`, code))
	message.SetText(fmt.Sprintf("کد تأیید شما: %s", code))

	res, err := m.client.Email.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("send code email: %w", err)
	}
	slog.Info("verification code sent", "to", to, "message_id", res.Header.Get("X-Message-Id"))
	return nil
}

// LogMailer is the development fallback used when no API key is configured:
// it just logs the code instead of sending it.
type LogMailer struct{}

// SendCode logs the code.
func (LogMailer) SendCode(_ context.Context, to, code string) error {
	slog.Info("mock verification email", "to", to, "code", code)
	return nil
}
