// Package mailer sends single HTML messages through the configured relay.
package mailer

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/unclebandit/edutour-mailer/internal/config"
	appErrors "github.com/unclebandit/edutour-mailer/internal/errors"
)

type Message struct {
	From    mail.Address
	To      string
	Subject string
	HTML    string
}

// Mailer delivers one message per call; an error means this recipient failed.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Sender is the fixed organizational From address.
func Sender(conf *config.Config) mail.Address {
	return mail.Address{Name: conf.Mail.FromName, Address: conf.Mail.FromAddress}
}

// New builds the mailer for conf.Mail.Driver. Missing relay settings yield
// ErrTransportNotConfigured so callers can abort before sending anything.
func New(conf *config.Config, logger *zap.Logger) (Mailer, error) {
	switch conf.Mail.Driver {
	case "", "smtp":
		s := conf.SMTP
		if s.Host == "" || s.User == "" || s.Pass == "" || conf.Mail.FromAddress == "" {
			return nil, errors.Wrap(appErrors.ErrTransportNotConfigured, "smtp host, user and password are required")
		}
		return NewSMTPMailer(s), nil
	case "sendgrid":
		if conf.Sendgrid.APIKey == "" || conf.Mail.FromAddress == "" {
			return nil, errors.Wrap(appErrors.ErrTransportNotConfigured, "sendgrid api key is required")
		}
		return NewSendgridMailer(conf.Sendgrid.APIKey), nil
	case "console":
		return NewConsoleMailer(logger), nil
	}
	return nil, errors.Wrapf(appErrors.ErrTransportNotConfigured, "unknown mail driver %q", conf.Mail.Driver)
}
