package mail

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/landmark-lsms/lsms-backend/internal/domain/shared"
	"github.com/landmark-lsms/lsms-backend/pkg/logger"
)

// Config holds SMTP relay settings.
type Config struct {
	// Host is the SMTP server hostname.
	Host string

	// Port is the SMTP server port (587 for STARTTLS).
	Port int

	// Username authenticates against the relay.
	Username string

	// Password authenticates against the relay.
	Password string

	// From is the sender address.
	From string

	// FromName is the sender display name.
	FromName string
}

// DefaultConfig returns defaults for a STARTTLS relay.
func DefaultConfig() Config {
	return Config{
		Port:     587,
		FromName: "Landmark Student Record Team",
	}
}

// SMTP is a Dispatcher backed by an SMTP relay.
type SMTP struct {
	cfg    Config
	dialer *gomail.Dialer
	log    *logger.Logger
}

// NewSMTP creates an SMTP dispatcher.
func NewSMTP(cfg Config, log *logger.Logger) *SMTP {
	if log == nil {
		log = logger.Default()
	}
	return &SMTP{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		log:    log.With(logger.Component("mail")),
	}
}

// Send delivers one message through the relay. The send blocks until
// the relay accepts or rejects it; there is no retry.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.From, s.cfg.FromName))
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.HTMLBody != "" && msg.TextBody != "":
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBody("text/html", msg.HTMLBody)
	default:
		m.SetBody("text/plain", msg.TextBody)
	}

	for _, att := range msg.Attachments {
		content := att.Content
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
		}
		if att.MIMEType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {att.MIMEType},
			}))
		}
		m.Attach(att.Filename, settings...)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return shared.WrapError("mail", "Send", shared.ErrDispatchFailed,
			fmt.Sprintf("failed to send %q", msg.Subject), err)
	}

	s.log.Debug("mail dispatched",
		logger.Email(msg.To), logger.String("subject", msg.Subject))
	return nil
}
