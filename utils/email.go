package utils

import "gopkg.in/gomail.v2"

// Mailer sends HTML mail through an SMTP relay.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, user, pass string) *Mailer {
	return &Mailer{dialer: gomail.NewDialer(host, port, user, pass), from: user}
}

func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return m.dialer.DialAndSend(msg)
}
