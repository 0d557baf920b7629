// Package mail delivers outbound email over SMTP using the persisted
// settings row. The stored SMTP password is decrypted per send.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
	"github.com/aussiebroadwan/workouttracker/internal/auth/store"
	"github.com/aussiebroadwan/workouttracker/pkg/cryptox"
	"github.com/aussiebroadwan/workouttracker/pkg/slogx"
	gomail "github.com/wneessen/go-mail"
)

var ErrNotConfigured = errors.New("mail: smtp settings not configured")

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

// SettingsSource loads the current SMTP settings. store.SmtpSettings
// satisfies it.
type SettingsSource interface {
	GetSmtpSettings(ctx context.Context) (domain.SmtpSettings, error)
}

// SMTPDispatcher sends one message per call and never retries.
type SMTPDispatcher struct {
	Settings SettingsSource
	Cipher   *cryptox.CredentialCipher
}

func NewSMTPDispatcher(settings SettingsSource, cipher *cryptox.CredentialCipher) *SMTPDispatcher {
	return &SMTPDispatcher{Settings: settings, Cipher: cipher}
}

func (d *SMTPDispatcher) Send(ctx context.Context, msg Message) error {
	log := slogx.FromContext(ctx)

	// 1. Load settings.
	settings, err := d.Settings.GetSmtpSettings(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotConfigured
		}
		return fmt.Errorf("load smtp settings: %w", err)
	}

	// 2. Recover the SMTP password.
	password := ""
	if settings.Password != "" {
		password, err = d.Cipher.Decrypt(settings.Password)
		if err != nil {
			return fmt.Errorf("decrypt smtp password: %w", err)
		}
	}

	// 3. Build message and client.
	m, err := BuildMessage(settings, msg)
	if err != nil {
		return err
	}
	client, err := gomail.NewClient(settings.Host, ClientOptions(settings, password)...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	// 4. Send.
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		log.Error("smtp send failed",
			slog.String("host", settings.Host),
			slog.Int("port", settings.Port),
			slog.Any("error", err),
		)
		return fmt.Errorf("smtp send: %w", err)
	}

	log.Info("mail sent", slog.String("subject", msg.Subject))
	return nil
}

// BuildMessage renders msg with the sender taken from settings. The sender
// falls back to the SMTP username when no sender address is configured.
func BuildMessage(settings domain.SmtpSettings, msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()

	from := settings.SenderEmail
	if from == "" {
		from = settings.Username
	}

	var err error
	if settings.SenderName != "" {
		err = m.FromFormat(settings.SenderName, from)
	} else {
		err = m.From(from)
	}
	if err != nil {
		return nil, fmt.Errorf("sender address: %w", err)
	}

	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("recipient address: %w", err)
	}

	m.Subject(msg.Subject)

	contentType := gomail.TypeTextPlain
	if msg.HTML {
		contentType = gomail.TypeTextHTML
	}
	m.SetBodyString(contentType, msg.Body)

	return m, nil
}

// ClientOptions maps settings onto go-mail client options. EnableSsl means
// mandatory TLS, implicit on port 465 and STARTTLS elsewhere.
func ClientOptions(settings domain.SmtpSettings, password string) []gomail.Option {
	opts := []gomail.Option{gomail.WithPort(settings.Port)}

	switch {
	case settings.EnableSsl && settings.Port == 465:
		opts = append(opts, gomail.WithSSL())
	case settings.EnableSsl:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	default:
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	if settings.Authentication {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(settings.Username),
			gomail.WithPassword(password),
		)
	}

	return opts
}
