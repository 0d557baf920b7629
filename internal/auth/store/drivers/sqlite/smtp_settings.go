package sqlite

import (
	"context"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
)

// smtpSettingsID keys the single settings row.
const smtpSettingsID = "default"

type smtpSettingsRepo struct {
	q querier
}

func (r *smtpSettingsRepo) GetSmtpSettings(ctx context.Context) (domain.SmtpSettings, error) {
	var s domain.SmtpSettings
	err := r.q.QueryRowContext(ctx, `
SELECT id, host, port, username, password, sender_email, sender_name,
       authentication, enable_ssl, enabled, updated_at, modified_by
FROM smtp_settings WHERE id = ?`, smtpSettingsID).Scan(
		&s.ID, &s.Host, &s.Port, &s.Username, &s.Password, &s.SenderEmail, &s.SenderName,
		&s.Authentication, &s.EnableSsl, &s.Enabled, &s.UpdatedAt, &s.ModifiedBy,
	)
	if err != nil {
		return domain.SmtpSettings{}, mapNotFound(err)
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}

func (r *smtpSettingsRepo) UpsertSmtpSettings(ctx context.Context, s domain.SmtpSettings) error {
	_, err := r.q.ExecContext(ctx, `
INSERT INTO smtp_settings (
    id, host, port, username, password, sender_email, sender_name,
    authentication, enable_ssl, enabled, updated_at, modified_by
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    host = excluded.host,
    port = excluded.port,
    username = excluded.username,
    password = excluded.password,
    sender_email = excluded.sender_email,
    sender_name = excluded.sender_name,
    authentication = excluded.authentication,
    enable_ssl = excluded.enable_ssl,
    enabled = excluded.enabled,
    updated_at = excluded.updated_at,
    modified_by = excluded.modified_by`,
		smtpSettingsID, s.Host, s.Port, s.Username, s.Password, s.SenderEmail, s.SenderName,
		s.Authentication, s.EnableSsl, s.Enabled, s.UpdatedAt.UTC(), s.ModifiedBy,
	)
	return err
}
