package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"ai-notes-be/internal/config"
)

type IEmailService interface {
	SendOTP(to string, otp string) error
	SendResetToken(to string, token string) error
}

type EmailService struct {
	cfg config.SMTPConfig
}

func NewEmailService(cfg config.SMTPConfig) IEmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Email, s.cfg.SenderName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Email, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func (s *EmailService) SendOTP(to string, otp string) error {
	body := fmt.Sprintf(`
		<h2>AI Notes Verification</h2>
		<p>Your verification code is:</p>
		<h1 style="letter-spacing: 4px;">%s</h1>
		<p>This code expires in 15 minutes.</p>
	`, otp)
	return s.send(to, "Your AI Notes verification code", body)
}

func (s *EmailService) SendResetToken(to string, token string) error {
	body := fmt.Sprintf(`
		<h2>Reset your AI Notes password</h2>
		<p>Use the token below to reset your password:</p>
		<h1 style="letter-spacing: 2px;">%s</h1>
		<p>If you did not request this, you can ignore this email.</p>
	`, token)
	return s.send(to, "AI Notes password reset", body)
}
