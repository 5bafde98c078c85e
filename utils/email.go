package utils

import (
	"fmt"
	"net/smtp"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

// EmailConfig holds email configuration
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SendEmail sends an email using SMTP
func SendEmail(to, subject, body string) error {
	// Get SMTP configuration from environment variables
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUsername := os.Getenv("SMTP_USERNAME")
	smtpPassword := os.Getenv("SMTP_PASSWORD")

	// Create email message
	message := fmt.Sprintf("Subject: %s\r\n"+
		"To: %s\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s", subject, to, body)

	// Connect to SMTP server
	auth := smtp.PlainAuth("", smtpUsername, smtpPassword, smtpHost)
	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)

	// Send email
	err := smtp.SendMail(addr, auth, smtpUsername, []string{to}, []byte(message))
	if err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}

// SendOverdueCommissionEmail notifies an establishment that a commission
// charge passed its due date without payment
func SendOverdueCommissionEmail(to, establishmentName string, amount decimal.Decimal, dueDate time.Time) error {
	// Get email configuration from environment variables
	config := EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     587, // Default SMTP port
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}

	// Create email message
	m := gomail.NewMessage()
	m.SetHeader("From", config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Commission charge overdue")

	// Create email body
	body := fmt.Sprintf(`
		<h2>Overdue commission charge</h2>
		<p>Hello %s,</p>
		<p>A commission charge of <strong>R$ %s</strong> was due on %s and has not been paid.</p>
		<p>Please settle it to keep your account active.</p>
	`, establishmentName, amount.StringFixed(2), dueDate.Format("02/01/2006"))
	m.SetBody("text/html", body)

	// Create SMTP dialer
	d := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)

	// Send email
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}

// SendChargeCreatedEmail notifies an establishment that a commission charge was issued
func SendChargeCreatedEmail(to, establishmentName string, amount decimal.Decimal, dueDate time.Time, invoiceURL string) error {
	subject := "New commission charge issued"
	body := fmt.Sprintf(`
		<h2>New commission charge</h2>
		<p>Hello %s,</p>
		<p>A commission charge of <strong>R$ %s</strong> was issued with due date %s.</p>
		<p><a href="%s">View the invoice</a></p>
	`, establishmentName, amount.StringFixed(2), dueDate.Format("02/01/2006"), invoiceURL)

	return SendEmail(to, subject, body)
}
