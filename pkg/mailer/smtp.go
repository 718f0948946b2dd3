package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// SMTPSender sends mail through a plain SMTP relay with PLAIN auth.
type SMTPSender struct {
	host string
	port string
	user string
	pass string
	from string
	log  *zap.Logger
}

func NewSMTPSender(host, port, user, pass, from string, log *zap.Logger) *SMTPSender {
	return &SMTPSender{host: host, port: port, user: user, pass: pass, from: from, log: log}
}

func (s *SMTPSender) SendVerificationOTP(ctx context.Context, to, firstName, otp string) error {
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\n"+
			"Thank you for registering with JobTrack. Use the following code to verify your email address:\r\n\r\n"+
			"    %s\r\n\r\n"+
			"This code expires in 5 minutes.\r\n"+
			"If you didn't request this verification, please ignore this email.\r\n",
		orDefault(firstName, "there"), otp)
	return s.send(ctx, to, "Verify Your Email - JobTrack", body)
}

func (s *SMTPSender) SendPasswordReset(ctx context.Context, to, firstName, resetURL string) error {
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\n"+
			"You have requested to reset your JobTrack password.\r\n"+
			"Open the link below to choose a new one:\r\n\r\n"+
			"    %s\r\n\r\n"+
			"This link expires in 30 minutes.\r\n"+
			"If you didn't request a password reset, please ignore this email. Your password will remain unchanged.\r\n",
		orDefault(firstName, "there"), resetURL)
	return s.send(ctx, to, "Password Reset Request - JobTrack", body)
}

func (s *SMTPSender) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.host == "" {
		return fmt.Errorf("smtp not configured")
	}
	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}
	if err := smtp.SendMail(s.host+":"+s.port, auth, s.from, []string{to}, []byte(msg)); err != nil {
		s.log.Warn("smtp send failed", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
