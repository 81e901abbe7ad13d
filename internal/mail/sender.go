// Package mail sends the confirmation emails over SMTP. Delivery is
// best-effort: callers hand messages to the Dispatcher and never wait on or
// see a send failure.
package mail

import (
	"fmt"
	"net/smtp"

	"github.com/daria-hk/contacts-api/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// ConfirmationMailer sends the confirm-your-email message.
type ConfirmationMailer interface {
	SendConfirmation(to, username, token string) error
}

// Sender delivers mail via SMTP with plain auth.
type Sender struct {
	cfg     config.SMTPConfig
	baseURL string
	logger  *logrus.Logger
}

// NewSender creates a new email sender. baseURL is the public address of this
// service, used to build the confirmation link.
func NewSender(cfg config.SMTPConfig, baseURL string, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:     cfg,
		baseURL: baseURL,
		logger:  logger,
	}
}

// SendConfirmation mails a confirmation link carrying the token to the user.
func (s *Sender) SendConfirmation(to, username, token string) error {
	link := fmt.Sprintf("%s/api/auth/confirmed_email/%s", s.baseURL, token)

	e := email.NewEmail()
	e.From = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)
	e.To = []string{to}
	e.Subject = "Confirm your email"
	e.Text = []byte(fmt.Sprintf(
		"Hi %s,\n\n"+
			"Thanks for registering. Please confirm your email address by opening the link below:\n\n"+
			"%s\n\n"+
			"The link is valid for 7 days. If you did not register, ignore this message.\n",
		username, link,
	))
	e.HTML = []byte(fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Thanks for registering. Please confirm your email address:</p>
<p><a href="%s">Confirm email</a></p>
<p>The link is valid for 7 days. If you did not register, ignore this message.</p>`,
		username, link,
	))

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("failed to send confirmation email to %s: %w", to, err)
	}

	s.logger.Infof("Confirmation email sent to %s", to)
	return nil
}
