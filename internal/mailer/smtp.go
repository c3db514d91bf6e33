// Package mailer delivers invitation links and recovery codes over SMTP.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// SMTP sends through the sender account's own provider, derived from the
// sender address domain.
type SMTP struct {
	senderEmail    string
	senderPassword string
}

func NewSMTP(senderEmail, senderPassword string) *SMTP {
	return &SMTP{senderEmail: senderEmail, senderPassword: senderPassword}
}

func (s *SMTP) SendInvite(ctx context.Context, recipient, inviterName, projectName, joinURL string, ttl time.Duration) error {
	subject := fmt.Sprintf("Invitation to project %s", projectName)
	body := fmt.Sprintf(`<html><body>
<h2>You have been invited to a project!</h2>
<p>%s invites you to join <strong>%q</strong>.</p>
<p><a href=%q>Accept invitation</a></p>
<p>The link is valid for %d minutes. If you were not expecting this
invitation, ignore this message.</p>
</body></html>`, inviterName, projectName, joinURL, int(ttl.Minutes()))
	return s.send(ctx, recipient, subject, body)
}

func (s *SMTP) SendRecoveryCode(ctx context.Context, recipient, code string) error {
	body := fmt.Sprintf("Your recovery code: <b>%s</b>", code)
	return s.send(ctx, recipient, "Recovery code", body)
}

func (s *SMTP) send(ctx context.Context, recipient, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	host, addr := s.smtpAddr()
	msg := strings.Join([]string{
		"From: " + s.senderEmail,
		"To: " + recipient,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	auth := smtp.PlainAuth("", s.senderEmail, s.senderPassword, host)
	if err := smtp.SendMail(addr, auth, s.senderEmail, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", recipient, err)
	}
	return nil
}

// smtpAddr derives the provider endpoint from the sender address domain.
func (s *SMTP) smtpAddr() (host, addr string) {
	parts := strings.SplitN(s.senderEmail, "@", 2)
	domain := parts[len(parts)-1]
	host = "smtp." + domain
	return host, host + ":587"
}
