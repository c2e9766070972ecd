package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client    *resend.Client
	fromEmail string
	appName   string
	isDev     bool
}

func NewEmailService(apiKey, fromEmail, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		appName:   appName,
		isDev:     isDev,
	}
}

func (s *EmailService) SendWelcomeEmail(email, name string) error {
	subject := "Thanks for joining in!"
	body := fmt.Sprintf("Welcome to %s, %s. Let me know how you get along with it!", s.appName, name)

	return s.send("welcome", email, subject, body)
}

func (s *EmailService) SendCancellationEmail(email, name string) error {
	subject := "Farewell!"
	body := fmt.Sprintf("We're sorry to see you leaving, %s. Is there anything we could have done better?", name)

	return s.send("cancellation", email, subject, body)
}

func (s *EmailService) send(kind, email, subject, body string) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", "type", kind, "to", email, "subject", subject)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{email},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(context.Background(), params)
	if err == nil {
		slog.Info("email sent", "type", kind, "to", email)
	}
	return err
}
