package services

import (
	"fmt"
	"net/smtp"
)

// Mailer sends transactional email. The SMTP implementation below is the
// only production one; tests substitute a recorder.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through a plain-auth SMTP relay.
type SMTPMailer struct {
	Server     string
	Port       string
	Email      string
	Password   string
	SenderName string
}

// NewSMTPMailer creates a Mailer for the given SMTP relay.
func NewSMTPMailer(server, port, email, password, senderName string) *SMTPMailer {
	return &SMTPMailer{
		Server:     server,
		Port:       port,
		Email:      email,
		Password:   password,
		SenderName: senderName,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	from := fmt.Sprintf("%s <%s>", m.SenderName, m.Email)

	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		from, to, subject, body,
	)

	auth := smtp.PlainAuth("", m.Email, m.Password, m.Server)
	if err := smtp.SendMail(m.Server+":"+m.Port, auth, m.Email, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
