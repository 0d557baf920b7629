package domain

import "time"

// SmtpSettings is the single outbound-mail configuration row. Password holds
// a CredentialCipher envelope, never the plaintext.
type SmtpSettings struct {
	ID             string
	Host           string
	Port           int
	Username       string
	Password       string
	SenderEmail    string
	SenderName     string
	Authentication bool
	EnableSsl      bool
	Enabled        bool

	UpdatedAt  time.Time
	ModifiedBy string
}
