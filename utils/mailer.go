package utils

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type Email struct {
	From    string
	To      string
	Subject string
	Body    string
}

// EmailSender delivers a single outbound email and returns the provider
// message ID when one is available.
type EmailSender interface {
	Send(email Email) (string, error)
}

// Mailer sends email over SMTP.
type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
}

func NewMailer(host string, port int, username, password string) *Mailer {
	return &Mailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
	}
}

func (m *Mailer) Send(email Email) (string, error) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", email.From)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/html", email.Body)

	d := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	if err := d.DialAndSend(msg); err != nil {
		return "", fmt.Errorf("error sending email: %v", err)
	}

	// SMTP gives us no provider message ID; the caller generates one
	return "", nil
}
