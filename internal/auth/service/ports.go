package service

import (
	"context"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
	"github.com/aussiebroadwan/workouttracker/internal/auth/identity"
	"github.com/aussiebroadwan/workouttracker/internal/auth/mail"
)

// UserStore is the identity capability the services run against.
type UserStore = identity.UserStore

// MailDispatcher delivers one message and reports the outcome. Callers do
// not retry.
type MailDispatcher interface {
	Send(ctx context.Context, msg mail.Message) error
}

// SettingsProvider supplies the outbound mail settings. It returns
// ErrMailNotConfigured when none have been saved.
type SettingsProvider interface {
	Current(ctx context.Context) (domain.SmtpSettings, error)
}
