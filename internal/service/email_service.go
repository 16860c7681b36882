package service

import (
	"context"
	"fmt"
	"html"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"balagh/internal/locale"
)

// emailSender is the part of the SES client the service uses
type emailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     emailSender
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service. It is disabled when fromEmail is empty.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service: region=%s from=%s base=%s", awsRegion, fromEmail, appBaseURL)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return newEmailServiceWithSender(sesv2.NewFromConfig(cfg), fromEmail, fromName, appBaseURL, debug), nil
}

func newEmailServiceWithSender(client emailSender, fromEmail, fromName, appBaseURL string, debug bool) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

type passwordResetCopy struct {
	subject string
	greet   string
	body    string
	action  string
	ignore  string
}

var passwordResetText = map[locale.Language]passwordResetCopy{
	locale.Arabic: {
		subject: "إعادة تعيين كلمة المرور في بلّغ",
		greet:   "مرحباً",
		body:    "تلقّينا طلباً لإعادة تعيين كلمة المرور لحسابك في بلّغ.",
		action:  "تسجيل الدخول",
		ignore:  "إذا لم تطلب ذلك، يمكنك تجاهل هذه الرسالة.",
	},
	locale.English: {
		subject: "Reset your Balagh password",
		greet:   "Hi",
		body:    "We received a request to reset the password for your Balagh account.",
		action:  "Sign in",
		ignore:  "If you didn't request this, you can safely ignore this email.",
	},
}

// SendPasswordResetEmail sends the forgot-password mail in lang, falling back to English
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail string, lang locale.Language) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): password reset to %s", toEmail)
		return nil
	}

	text, ok := passwordResetText[lang]
	if !ok {
		text = passwordResetText[locale.English]
	}
	dir := lang.Direction()
	if !ok {
		dir = locale.LTR
	}
	link := s.appBaseURL + "/auth/login"

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html dir="%s">
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<p>%s,</p>
	<p>%s</p>
	<p><a href="%s">%s</a></p>
	<p style="font-size: 12px; color: #666;">%s</p>
</body>
</html>
`, dir, text.greet, html.EscapeString(text.body), link, text.action, text.ignore)

	textBody := fmt.Sprintf("%s,\n\n%s\n\n%s: %s\n\n%s\n", text.greet, text.body, text.action, link, text.ignore)

	return s.sendEmail(ctx, toEmail, text.subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] Sending email: from=%s to=%s subject=%s", fromAddress, toEmail, subject)
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

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] Message ID: %s", *result.MessageId)
	}
	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
