package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/workouttracker/internal/auth/mail"
	"github.com/aussiebroadwan/workouttracker/internal/auth/store"
	"github.com/aussiebroadwan/workouttracker/pkg/slogx"
)

const resetSubject = "Password Reset Request"

// PasswordResetService issues and redeems single-use reset tokens.
type PasswordResetService struct {
	Users     UserStore
	Mail      MailDispatcher
	Settings  SettingsProvider
	ClientURL string
}

// ResetLink builds the link mailed to the user. The token is query-escaped;
// the email is embedded as given.
func ResetLink(clientURL, token, email string) string {
	return fmt.Sprintf("%s/reset-password?token=%s&email=%s",
		strings.TrimRight(clientURL, "/"), url.QueryEscape(token), email)
}

// RequestReset mails a reset link to the account registered under email.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)
	email = strings.TrimSpace(email)

	// 1. Mail must be configured and enabled.
	settings, err := s.Settings.Current(ctx)
	if err != nil {
		return err
	}
	if !settings.Enabled {
		return ErrMailDisabled
	}

	// 2. Resolve the account.
	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("reset requested for unknown email")
			return ErrUserDoesNotExist
		}
		return err
	}

	// 3. Issue the token.
	token, err := s.Users.GenerateResetToken(ctx, user)
	if err != nil {
		l.Error("failed to create reset token", slog.String("user_id", user.ID), slog.Any("error", err))
		return fmt.Errorf("create reset token: %w", err)
	}

	// 4. Mail the link.
	link := ResetLink(s.ClientURL, token, email)
	err = s.Mail.Send(ctx, mail.Message{
		To:      email,
		Subject: resetSubject,
		Body:    fmt.Sprintf("Please reset your password by <a href='%s'> clicking here</a>", link),
		HTML:    true,
	})
	if err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	l.Info("reset mail sent", slog.String("user_id", user.ID))
	return nil
}

// ResetPassword redeems token for the account registered under email.
func (s *PasswordResetService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	l := slogx.FromContext(ctx)
	email = strings.TrimSpace(email)

	// 1. Resolve the account, then judge the new password.
	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserDoesNotExist
		}
		return err
	}

	var v fieldChecks
	v.password("new_password", newPassword)
	if err := v.err(); err != nil {
		return err
	}

	// 2. Burn the token and swap the password.
	if token == "" {
		return ErrInvalidToken
	}
	if err := s.Users.ConsumeResetToken(ctx, user, token, newPassword); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("reset with invalid token", slog.String("user_id", user.ID))
			return ErrInvalidToken
		}
		return fmt.Errorf("reset password: %w", err)
	}

	l.Info("password reset", slog.String("user_id", user.ID))
	return nil
}
