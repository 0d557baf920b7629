package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
	"github.com/aussiebroadwan/workouttracker/internal/auth/store"
	"github.com/aussiebroadwan/workouttracker/pkg/cryptox"
	"github.com/aussiebroadwan/workouttracker/pkg/slogx"
)

// SmtpSettingsService manages the single outbound mail configuration. The
// SMTP password is stored only as a CredentialCipher envelope.
type SmtpSettingsService struct {
	Store  store.Store
	Cipher *cryptox.CredentialCipher
}

type SmtpSettingsInput struct {
	Host           string
	Port           int
	Username       string
	Password       string // empty keeps the stored password
	SenderEmail    string
	SenderName     string
	Authentication bool
	EnableSsl      bool
	Enabled        bool
}

// Current returns the stored settings or ErrMailNotConfigured.
func (s *SmtpSettingsService) Current(ctx context.Context) (domain.SmtpSettings, error) {
	settings, err := s.Store.SmtpSettings().GetSmtpSettings(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.SmtpSettings{}, ErrMailNotConfigured
		}
		return domain.SmtpSettings{}, err
	}
	return settings, nil
}

// Save validates and stores in, encrypting the password.
func (s *SmtpSettingsService) Save(ctx context.Context, in SmtpSettingsInput, actor string) (domain.SmtpSettings, error) {
	l := slogx.FromContext(ctx)

	var v fieldChecks
	if strings.TrimSpace(in.Host) == "" {
		v.fail("host", "host is required")
	}
	v.check("port", in.Port, "min=1,max=65535", "port must be between 1 and 65535")
	if in.SenderEmail != "" && !IsValidEmail(in.SenderEmail) {
		v.fail("sender_email", "sender email is not a valid address")
	}
	if in.Authentication && in.Username == "" {
		v.fail("username", "username is required when authentication is enabled")
	}
	if err := v.err(); err != nil {
		return domain.SmtpSettings{}, err
	}

	var saved domain.SmtpSettings
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		envelope := ""
		if in.Password != "" {
			var err error
			if envelope, err = s.Cipher.Encrypt(in.Password); err != nil {
				return fmt.Errorf("encrypt smtp password: %w", err)
			}
		} else {
			existing, err := tx.SmtpSettings().GetSmtpSettings(ctx)
			switch {
			case err == nil:
				envelope = existing.Password
			case !errors.Is(err, store.ErrNotFound):
				return err
			}
		}

		saved = domain.SmtpSettings{
			Host:           strings.TrimSpace(in.Host),
			Port:           in.Port,
			Username:       in.Username,
			Password:       envelope,
			SenderEmail:    in.SenderEmail,
			SenderName:     in.SenderName,
			Authentication: in.Authentication,
			EnableSsl:      in.EnableSsl,
			Enabled:        in.Enabled,
			UpdatedAt:      time.Now().UTC(),
			ModifiedBy:     actor,
		}
		return tx.SmtpSettings().UpsertSmtpSettings(ctx, saved)
	})
	if err != nil {
		l.Error("failed to save smtp settings", slog.Any("error", err))
		return domain.SmtpSettings{}, err
	}

	l.Info("smtp settings saved", slog.String("host", saved.Host), slog.Bool("enabled", saved.Enabled))
	return saved, nil
}
