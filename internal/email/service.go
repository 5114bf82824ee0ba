// internal/email/service.go
package email

import (
	"fmt"
	"net/smtp"

	"github.com/sirupsen/logrus"
)

// Sender delivers mail over SMTP. With no host configured it logs and drops,
// which keeps local development working without a mail server.
type Sender struct {
	host     string
	port     string
	username string
	password string
	from     string
	fromName string
}

func NewSender(host, port, username, password, from, fromName string) *Sender {
	return &Sender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
	}
}

func (s *Sender) Send(to, subject, body string) error {
	if s.host == "" {
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).
			Info("SMTP not configured, dropping email")
		return nil
	}

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.fromName, s.from, to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, auth, s.from, []string{to}, msg)
}
