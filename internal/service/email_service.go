package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService sends transactional mail via Amazon SES. When no sender
// address is configured the service is disabled and sends become no-ops
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates a new email service
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendWelcomeEmail greets a newly registered learner
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Welcome to TalkCoach!"
	textBody := fmt.Sprintf(`Hi %s,

Thank you for creating your TalkCoach account! Start a conversation session
with your AI tutor whenever you like, and check your feedback reports to see
how your grammar, vocabulary and conversation skills improve over time.

Get started: %s/login

---
This is an automated email from TalkCoach. Please do not reply.
`, toName, s.appBaseURL)

	htmlBody := fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>Thank you for creating your TalkCoach account! Start a conversation session
with your AI tutor whenever you like, and check your feedback reports to see
how your grammar, vocabulary and conversation skills improve over time.</p>
<p><a href="%s/login">Get started</a></p>
<p style="font-size:12px;color:#666">This is an automated email from TalkCoach. Please do not reply.</p>
</body></html>`, toName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendPasswordResetEmail sends a password reset link
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetToken string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): password reset to %s", toEmail)
		return nil
	}

	resetLink := fmt.Sprintf("%s/auth/reset-password?token=%s", s.appBaseURL, resetToken)

	subject := "Reset Your TalkCoach Password"
	textBody := fmt.Sprintf(`Hi %s,

We received a request to reset your TalkCoach password.

Click the link below to choose a new one:
%s

This link will expire in 1 hour. If you didn't request a password reset,
you can safely ignore this email.

---
This is an automated email from TalkCoach. Please do not reply.
`, toName, resetLink)

	htmlBody := fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>We received a request to reset your TalkCoach password.</p>
<p><a href="%s">Reset your password</a></p>
<p>Or copy this link into your browser:<br><span style="font-size:12px;color:#666">%s</span></p>
<p><strong>This link will expire in 1 hour.</strong> If you didn't request a
password reset, you can safely ignore this email.</p>
<p style="font-size:12px;color:#666">This is an automated email from TalkCoach. Please do not reply.</p>
</body></html>`, toName, resetLink, resetLink)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent: to=%s, subject=%s", toEmail, subject)
	return nil
}
