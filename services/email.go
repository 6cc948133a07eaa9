package services

import (
	"fmt"
	"html"
	"strings"

	"police_flow_app_go/config"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In development mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmail(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}

	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	zap.S().Infow("Email sent via Resend", "id", sent.Id, "to", email.To)
	return nil
}

// logEmail logs email details in test mode
func logEmail(email *Email) {
	zap.S().Infow("Email logged (test mode, not sent)",
		"to", email.To,
		"subject", email.Subject,
		"text", truncate(email.TextBody, 500),
	)
}

// truncate truncates a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// SendEmailAsync sends an email in a goroutine so workflow calls never wait on delivery
func SendEmailAsync(cfg *config.Config, email *Email) {
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}

	go func(cfg *config.Config, email *Email) {
		if err := SendEmail(cfg, email); err != nil {
			zap.S().Errorw("Error sending async email", "to", email.To, "error", err)
		}
	}(cfg, emailCopy)
}

// BuildNotificationEmail renders a workflow notification as an email
func BuildNotificationEmail(toEmail, userName, title, message string) *Email {
	var text strings.Builder
	fmt.Fprintf(&text, "Hello %s,\n\n%s\n\n%s\n", userName, title, message)

	htmlBody := fmt.Sprintf("<p>Hello %s,</p><h3>%s</h3><p>%s</p>",
		html.EscapeString(userName), html.EscapeString(title), html.EscapeString(message))

	return &Email{
		To:       []string{toEmail},
		Subject:  title,
		HTMLBody: htmlBody,
		TextBody: text.String(),
	}
}
