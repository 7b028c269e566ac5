package email

import (
	"fmt"

	"github.com/joshshaloo/project-unify-sub000/internal/config"
	"github.com/joshshaloo/project-unify-sub000/internal/domain"

	gomail "gopkg.in/gomail.v2"
)

// Mailer sends transactional mail for sign-in and club invitations.
type Mailer interface {
	SendMagicLink(toEmail, token string) error
	SendInvitation(toEmail string, invitation *domain.Invitation, clubName string) error
}

type smtpMailer struct {
	dialer  *gomail.Dialer
	from    string
	baseURL string
}

// NewSMTPMailer creates a Mailer backed by the configured SMTP server.
func NewSMTPMailer(cfg config.EmailConfig, baseURL string) Mailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &smtpMailer{dialer: d, from: cfg.From, baseURL: baseURL}
}

func (m *smtpMailer) SendMagicLink(toEmail, token string) error {
	link := fmt.Sprintf("%s/auth/verify?token=%s", m.baseURL, token)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Your login link for Soccer Project Unify")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Click the link below to sign in. It expires in 15 minutes and can only be used once.\n\n%s\n\nIf you did not request this, you can ignore this email.",
		link,
	))
	msg.AddAlternative("text/html", fmt.Sprintf(
		`<p>Click the link below to sign in. It expires in 15 minutes and can only be used once.</p>
<p><a href="%s">Sign in to Soccer Project Unify</a></p>
<p>If you did not request this, you can ignore this email.</p>`,
		link,
	))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send magic link email: %w", err)
	}
	return nil
}

func (m *smtpMailer) SendInvitation(toEmail string, invitation *domain.Invitation, clubName string) error {
	link := fmt.Sprintf("%s/invitations/accept?token=%s", m.baseURL, invitation.Token)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", fmt.Sprintf("You have been invited to join %s", clubName))
	msg.SetBody("text/plain", fmt.Sprintf(
		"You have been invited to join %s as %s.\n\nAccept the invitation here (valid for 7 days):\n%s",
		clubName, invitation.Role, link,
	))
	msg.AddAlternative("text/html", fmt.Sprintf(
		`<p>You have been invited to join <strong>%s</strong> as %s.</p>
<p><a href="%s">Accept invitation</a> (valid for 7 days)</p>`,
		clubName, invitation.Role, link,
	))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}
	return nil
}
