package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional emails.
type EmailService interface {
	SendWelcome(ctx context.Context, toEmail, fullName string) error
}

// NoopEmailService is used when email sending is not configured.
type NoopEmailService struct{}

func (s *NoopEmailService) SendWelcome(ctx context.Context, toEmail, fullName string) error {
	log.Printf("[EmailService] noop welcome email to=%s", toEmail)
	return nil
}

// ResendEmailService sends emails via the Resend REST API.
type ResendEmailService struct {
	from   string
	client *resend.Client
}

// NewResendEmailService creates a Resend-backed email service.
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

// SendWelcome sends the post-registration welcome email, retrying transient
// failures a few times.
func (s *ResendEmailService) SendWelcome(ctx context.Context, toEmail, fullName string) error {
	if toEmail == "" {
		return fmt.Errorf("toEmail is required")
	}
	if fullName == "" {
		fullName = "there"
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: "Welcome to TestHub",
		Text:    fmt.Sprintf("Hi %s,\n\nYour TestHub account is ready. Browse the published tests and start your first attempt.\n", fullName),
		Html:    fmt.Sprintf("<p>Hi %s,</p><p>Your TestHub account is ready. Browse the published tests and start your first attempt.</p>", fullName),
	}

	options := &resend.SendEmailOptions{}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.client.Emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
