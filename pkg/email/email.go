package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"net/url"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
	FrontendURL  string
}

// EmailService sends the shop's transactional mail over plain SMTP.
type EmailService struct {
	config EmailConfig
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config}
}

// appName is what the shop owner sees as the sender brand. FromName is
// configurable per deployment; the fallback matches the product name.
func (s *EmailService) appName() string {
	if s.config.FromName != "" {
		return s.config.FromName
	}
	return "ShopBill"
}

// SendPasswordResetEmail mails a reset link to the shop account.
func (s *EmailService) SendPasswordResetEmail(toEmail, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s&email=%s",
		s.config.FrontendURL,
		url.QueryEscape(token),
		url.QueryEscape(toEmail),
	)

	body, err := s.renderPasswordResetEmail(toEmail, resetURL)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Reset your %s password", s.appName())
	return s.send(toEmail, s.buildMessage(toEmail, subject, body))
}

// send delivers one message over SMTP with PLAIN auth.
func (s *EmailService) send(to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)

	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// buildMessage assembles an HTML mail with its RFC 5322 headers.
func (s *EmailService) buildMessage(to, subject, htmlBody string) []byte {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.appName(), s.config.FromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)
	return msg.Bytes()
}

// renderPasswordResetEmail renders the password reset email template
func (s *EmailService) renderPasswordResetEmail(email, resetURL string) (string, error) {
	data := struct {
		Email    string
		ResetURL string
		AppName  string
	}{
		Email:    email,
		ResetURL: resetURL,
		AppName:  s.appName(),
	}

	var buf bytes.Buffer
	if err := passwordResetTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// passwordResetTemplate keeps the markup deliberately simple: shop
// owners read this on the same phone or POS tablet they run the till
// from, so one column and one button.
var passwordResetTemplate = template.Must(template.New("password_reset").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Password reset</title>
</head>
<body style="margin: 0; padding: 24px; font-family: Arial, Helvetica, sans-serif; background-color: #f5f5f4;">
    <table role="presentation" style="max-width: 520px; margin: 0 auto; background-color: #ffffff; border: 1px solid #e7e5e4; border-radius: 8px; border-collapse: collapse; width: 100%;">
        <tr>
            <td style="background-color: #0f766e; padding: 20px 28px; border-radius: 8px 8px 0 0;">
                <span style="color: #ffffff; font-size: 22px; font-weight: bold;">{{.AppName}}</span>
            </td>
        </tr>
        <tr>
            <td style="padding: 28px;">
                <h2 style="color: #1c1917; margin: 0 0 16px 0; font-size: 20px;">Password reset requested</h2>
                <p style="color: #44403c; font-size: 15px; line-height: 1.6; margin: 0 0 16px 0;">
                    Someone asked to reset the password for the {{.AppName}} account
                    <strong>{{.Email}}</strong>. If that was you, use the button below.
                    The link stops working after <strong>1 hour</strong>.
                </p>
                <p style="margin: 0 0 24px 0;">
                    <a href="{{.ResetURL}}" style="display: inline-block; padding: 12px 28px; background-color: #0f766e; color: #ffffff; text-decoration: none; font-size: 15px; font-weight: bold; border-radius: 6px;">
                        Choose a new password
                    </a>
                </p>
                <p style="color: #78716c; font-size: 13px; line-height: 1.6; margin: 0 0 12px 0;">
                    If you did not ask for this, ignore this email. Your password stays as
                    it is and the till keeps working as normal.
                </p>
                <p style="color: #78716c; font-size: 13px; line-height: 1.6; margin: 0; word-break: break-all;">
                    Button not working? Open this link instead:<br>
                    <a href="{{.ResetURL}}" style="color: #0f766e;">{{.ResetURL}}</a>
                </p>
            </td>
        </tr>
        <tr>
            <td style="padding: 16px 28px; border-top: 1px solid #e7e5e4;">
                <p style="color: #a8a29e; font-size: 12px; margin: 0;">
                    Sent by {{.AppName}} because a password reset was requested for this address.
                </p>
            </td>
        </tr>
    </table>
</body>
</html>
`))
