package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional emails.
type EmailService interface {
	SendRegistrationConfirmation(ctx context.Context, toEmail, quizTitle string, scheduledAt time.Time) error
}

// NoopEmailService is used when email notifications are disabled.
type NoopEmailService struct{}

func (s *NoopEmailService) SendRegistrationConfirmation(ctx context.Context, toEmail, quizTitle string, scheduledAt time.Time) error {
	log.Printf("[EmailService] noop send registration confirmation to=%s", toEmail)
	return nil
}

// ResendEmailService sends emails via Resend REST API.
type ResendEmailService struct {
	from   string
	client *resend.Client
}

func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

func (s *ResendEmailService) SendRegistrationConfirmation(ctx context.Context, toEmail, quizTitle string, scheduledAt time.Time) error {
	if toEmail == "" {
		return fmt.Errorf("toEmail is required")
	}

	when := scheduledAt.Format("02 Jan 2006 15:04 MST")
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: fmt.Sprintf("You are registered: %s", quizTitle),
		Text:    fmt.Sprintf("Your registration for %q is confirmed. The quiz starts at %s.", quizTitle, when),
		Html:    fmt.Sprintf("<p>Your registration for <strong>%s</strong> is confirmed.</p><p>The quiz starts at %s.</p>", quizTitle, when),
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send registration confirmation: %w", err)
	}
	return nil
}
