package mailer

import (
	"context"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/unclebandit/edutour-mailer/internal/config"
)

const smtpTimeout = 30 * time.Second

type SMTPMailer struct {
	host string
	port int
	user string
	pass string
}

func NewSMTPMailer(conf config.SMTPConfig) *SMTPMailer {
	port := conf.Port
	if port == 0 {
		port = 587
	}
	return &SMTPMailer{host: conf.Host, port: port, user: conf.User, pass: conf.Pass}
}

func (m *SMTPMailer) options() []gomail.Option {
	opts := []gomail.Option{
		gomail.WithPort(m.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.user),
		gomail.WithPassword(m.pass),
		gomail.WithTimeout(smtpTimeout),
	}
	// 465 is implicit TLS; everything else upgrades with STARTTLS when offered.
	if m.port == 465 {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	return opts
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	gm := gomail.NewMsg()
	if err := gm.FromFormat(msg.From.Name, msg.From.Address); err != nil {
		return err
	}
	if err := gm.To(msg.To); err != nil {
		return err
	}
	gm.Subject(msg.Subject)
	gm.SetBodyString(gomail.TypeTextHTML, msg.HTML)

	client, err := gomail.NewClient(m.host, m.options()...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, gm)
}
