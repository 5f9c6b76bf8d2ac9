package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/iolph/wpr/internal/config"
	"github.com/iolph/wpr/pkg/logger"
	mailjet "github.com/mailjet/mailjet-apiv3-go/v4"
)

// EmailService delivers the confirmation email after a submission. Delivery
// is soft: a failure is logged and reported as a flag, never an error, since
// the report is already saved.
type EmailService struct {
	config  *config.EmailConfig
	mailjet *mailjet.Client
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	s := &EmailService{config: cfg}
	if cfg.Provider != "smtp" && cfg.APIKey != "" && cfg.APISecret != "" {
		s.mailjet = mailjet.NewMailjetClient(cfg.APIKey, cfg.APISecret)
	}
	return s
}

// SendConfirmation emails the coaching summary back to the employee.
// Returns true on delivery, false on any failure or when email is disabled.
func (s *EmailService) SendConfirmation(toEmail, toName string, week, year int, summary string) bool {
	if !s.config.Enabled() {
		logger.Debug().Msg("email disabled, skipping confirmation")
		return false
	}

	subject := fmt.Sprintf("WPR Submission Confirmation - Week %d, %d", week, year)
	html := s.buildConfirmationHTML(toName, week, summary)
	text := s.buildConfirmationText(toName, week, year)

	var err error
	switch s.config.Provider {
	case "smtp":
		err = s.sendSMTP(toEmail, subject, html)
	default:
		err = s.sendMailjet(toEmail, toName, subject, text, html)
	}
	if err != nil {
		logger.Error().Err(err).Str("to", toEmail).Msg("failed to send confirmation email")
		LogError("email", "send_confirmation", err.Error(), map[string]interface{}{
			"to": toEmail, "week": week, "year": year,
		})
		return false
	}

	logger.Info().Str("to", toEmail).Int("week", week).Msg("confirmation email sent")
	return true
}

// SendDigest emails a weekly team digest to the configured recipients.
func (s *EmailService) SendDigest(recipients []string, subject, html string) error {
	if !s.config.Enabled() {
		return fmt.Errorf("email not configured")
	}
	if len(recipients) == 0 {
		return fmt.Errorf("no digest recipients configured")
	}

	switch s.config.Provider {
	case "smtp":
		var lastErr error
		for _, to := range recipients {
			if err := s.sendSMTP(to, subject, html); err != nil {
				lastErr = err
			}
		}
		return lastErr
	default:
		to := make(mailjet.RecipientsV31, 0, len(recipients))
		for _, addr := range recipients {
			to = append(to, mailjet.RecipientV31{Email: addr})
		}
		messages := mailjet.MessagesV31{Info: []mailjet.InfoMessagesV31{{
			From: &mailjet.RecipientV31{
				Email: s.config.FromEmail,
				Name:  s.config.FromName,
			},
			To:       &to,
			Subject:  subject,
			HTMLPart: html,
		}}}
		_, err := s.mailjet.SendMailV31(&messages)
		return err
	}
}

func (s *EmailService) sendMailjet(toEmail, toName, subject, text, html string) error {
	if s.mailjet == nil {
		return fmt.Errorf("mailjet client not configured")
	}

	messages := mailjet.MessagesV31{Info: []mailjet.InfoMessagesV31{{
		From: &mailjet.RecipientV31{
			Email: s.config.FromEmail,
			Name:  s.config.FromName,
		},
		To: &mailjet.RecipientsV31{
			{Email: toEmail, Name: toName},
		},
		Subject:  subject,
		TextPart: text,
		HTMLPart: html,
	}}}

	_, err := s.mailjet.SendMailV31(&messages)
	return err
}

func (s *EmailService) sendSMTP(to, subject, html string) error {
	from := s.config.FromEmail
	if from == "" {
		from = s.config.Username
	}

	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", s.config.FromName, from),
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	var message strings.Builder
	for k, v := range headers {
		fmt.Fprintf(&message, "%s: %s\r\n", k, v)
	}
	message.WriteString("\r\n")
	message.WriteString(html)

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.Username != "" && s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPHost)
	}

	if s.config.UseTLS {
		return s.sendSMTPTLS(addr, auth, from, to, message.String())
	}
	return smtp.SendMail(addr, auth, from, []string{to}, []byte(message.String()))
}

func (s *EmailService) sendSMTPTLS(addr string, auth smtp.Auth, from, to, message string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.config.SMTPHost})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return err
	}
	return w.Close()
}

func (s *EmailService) buildConfirmationHTML(name string, week int, summary string) string {
	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif; line-height: 1.6; color: #333;\">")
	sb.WriteString("<div style=\"max-width: 800px; margin: 0 auto; padding: 20px;\">")
	sb.WriteString("<h1 style=\"color: #2E86C1;\">Weekly Productivity Report Summary</h1>")
	fmt.Fprintf(&sb, "<h2 style=\"color: #2E86C1;\">Week %d</h2>", week)
	fmt.Fprintf(&sb, "<p>Date: %s</p>", time.Now().Format("January 02, 2006"))
	fmt.Fprintf(&sb, "<p>Dear %s,</p>", scrubHTML(name))
	sb.WriteString("<p>Thank you for submitting your weekly productivity report. Here is your personalized summary:</p>")
	fmt.Fprintf(&sb, "<div style=\"margin: 20px 0;\">%s</div>", scrubHTML(summary))
	sb.WriteString("<div style=\"margin-top: 30px; color: #666;\"><p>Best regards,<br>IOL Inc.</p></div>")
	sb.WriteString("</div></body></html>")

	return sb.String()
}

func (s *EmailService) buildConfirmationText(name string, week, year int) string {
	return fmt.Sprintf(
		"Dear %s,\n\nYour Weekly Productivity Report for Week %d, %d has been received. "+
			"Your personalized summary is included in the HTML version of this email.\n\nBest regards,\nIOL Inc.",
		name, week, year)
}

// scrubHTML strips script vectors from model-generated or user-provided
// markup before it goes into an email body.
func scrubHTML(html string) string {
	lower := strings.ToLower(html)
	for _, pattern := range []string{"<script", "javascript:", "onerror=", "onclick=", "onload="} {
		for {
			idx := strings.Index(lower, pattern)
			if idx < 0 {
				break
			}
			html = html[:idx] + html[idx+len(pattern):]
			lower = strings.ToLower(html)
		}
	}
	return html
}
