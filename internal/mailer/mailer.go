package mailer

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"outreach-gateway/pkg/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// ErrNotConfigured is returned when a send is attempted before the
// transport has valid settings.
var ErrNotConfigured = errors.New("mailer: transport is not configured")

// Settings is everything needed to build the SMTP transport.
type Settings struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	Secure  bool   `json:"secure"` // implicit TLS (port 465 style)
	User    string `json:"user"`
	Pass    string `json:"pass"`
	From    string `json:"from"`
	ReplyTo string `json:"replyTo,omitempty"`
}

// Transport is the mail delivery contract the dispatcher depends on.
type Transport interface {
	Send(msg models.OutboundMessage) (messageID string, err error)
}

// SMTPTransport delivers mail over SMTP via gomail. Callers hold the handle
// and swap credentials with Reconfigure; there is no global transport state.
type SMTPTransport struct {
	mu         sync.RWMutex
	settings   Settings
	dialer     *gomail.Dialer
	configured bool
	log        zerolog.Logger
}

func NewSMTPTransport(settings Settings, log zerolog.Logger) *SMTPTransport {
	t := &SMTPTransport{log: log}
	if err := t.Reconfigure(settings); err != nil {
		log.Warn().Err(err).Msg("SMTP transport starting unconfigured")
	}
	return t
}

// Reconfigure validates the settings and replaces the dialer. On error the
// previous configuration is kept.
func (t *SMTPTransport) Reconfigure(settings Settings) error {
	if settings.Host == "" {
		return fmt.Errorf("%w: host is required", ErrNotConfigured)
	}
	if settings.Port <= 0 || settings.Port > 65535 {
		return fmt.Errorf("%w: invalid port %d", ErrNotConfigured, settings.Port)
	}
	if settings.User == "" || settings.Pass == "" {
		return fmt.Errorf("%w: credentials are required", ErrNotConfigured)
	}

	dialer := gomail.NewDialer(settings.Host, settings.Port, settings.User, settings.Pass)
	dialer.SSL = settings.Secure

	t.mu.Lock()
	t.settings = settings
	t.dialer = dialer
	t.configured = true
	t.mu.Unlock()

	t.log.Info().Str("host", settings.Host).Int("port", settings.Port).Msg("SMTP transport configured")
	return nil
}

// Verify dials the SMTP server and closes the connection, confirming the
// configuration without sending anything.
func (t *SMTPTransport) Verify() error {
	t.mu.RLock()
	dialer := t.dialer
	configured := t.configured
	t.mu.RUnlock()

	if !configured {
		return ErrNotConfigured
	}
	conn, err := dialer.Dial()
	if err != nil {
		return fmt.Errorf("mailer: verify: %w", err)
	}
	return conn.Close()
}

// Configured reports whether the transport has usable settings.
func (t *SMTPTransport) Configured() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.configured
}

// From returns the configured default sender address.
func (t *SMTPTransport) From() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.settings.From != "" {
		return t.settings.From
	}
	return t.settings.User
}

// Send delivers a single message. Messages must carry a recipient, a
// subject, and either a text or an HTML body.
func (t *SMTPTransport) Send(msg models.OutboundMessage) (string, error) {
	t.mu.RLock()
	dialer := t.dialer
	settings := t.settings
	configured := t.configured
	t.mu.RUnlock()

	if !configured {
		return "", ErrNotConfigured
	}
	if msg.To == "" || msg.Subject == "" || (msg.Text == "" && msg.HTML == "") {
		return "", errors.New("mailer: missing required fields: to, subject, and content (text or html)")
	}

	from := msg.From
	if from == "" {
		from = settings.From
	}
	if from == "" {
		from = settings.User
	}
	replyTo := msg.ReplyTo
	if replyTo == "" {
		replyTo = settings.ReplyTo
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), settings.Host)

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", messageID)
	if replyTo != "" {
		m.SetHeader("Reply-To", replyTo)
	}
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		if msg.HTML != "" {
			m.AddAlternative("text/html", msg.HTML)
		}
	} else {
		m.SetBody("text/html", msg.HTML)
	}
	for _, att := range msg.Attachments {
		content := att.Content
		attach := []gomail.FileSetting{gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(content)
			return err
		})}
		if att.ContentType != "" {
			attach = append(attach, gomail.SetHeader(map[string][]string{"Content-Type": {att.ContentType}}))
		}
		m.Attach(att.Filename, attach...)
	}

	if err := dialer.DialAndSend(m); err != nil {
		return "", fmt.Errorf("mailer: send to %s: %w", msg.To, err)
	}
	return messageID, nil
}
