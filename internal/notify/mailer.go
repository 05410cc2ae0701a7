// Package notify emails the site owner when the contact form is used.
package notify

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/brijesht/folio/internal/content"
)

// sendFunc matches smtp.SendMail; swapped out in tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends new-message notifications over SMTP.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	to       string
	send     sendFunc
}

// NewMailer creates a mailer. All fields come from config; an empty host
// or recipient means notifications are disabled and the caller should
// not install the mailer at all.
func NewMailer(host, port, username, password, to string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		to:       to,
		send:     smtp.SendMail,
	}
}

// NotifyNewMessage emails the owner about one contact-form submission.
func (m *Mailer) NotifyNewMessage(msg content.Message) error {
	if m.username == "" || m.password == "" {
		return fmt.Errorf("notify: smtp credentials not configured")
	}

	subject := fmt.Sprintf("Portfolio contact: %s", msg.Name)
	body := FormatMessage(msg)
	mail := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		m.username, m.to, subject, body)

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := m.send(m.host+":"+m.port, auth, m.username, []string{m.to}, []byte(mail)); err != nil {
		return fmt.Errorf("notify: send mail: %w", err)
	}
	return nil
}

// FormatMessage renders the notification body.
func FormatMessage(msg content.Message) string {
	received := time.UnixMilli(msg.Timestamp).UTC().Format(time.RFC1123)
	return fmt.Sprintf(
		"New contact form submission:\n\nName: %s\nEmail: %s\nSubject: %s\nReceived: %s\n\n%s\n",
		msg.Name, msg.Email, msg.Subject, received, msg.Body)
}
