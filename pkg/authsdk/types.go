package authsdk

import "time"

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the JSON body of every non-validation error.
type ErrorResponse struct {
	// Error is the machine-readable error code (e.g., "invalid_credentials")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`

	// Field names the identifier that collided on a duplicate_identifier error
	Field string `json:"field,omitempty"`

	// LockedUntil is set on account_locked errors
	LockedUntil *time.Time `json:"locked_until,omitempty"`
}

// ValidationErrorResponse is returned when request fields fail validation.
type ValidationErrorResponse struct {
	// Code is always "validation_error"
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Details maps field names to error messages
	Details map[string]string `json:"details,omitempty"`
}

// ============================================================================
// Authentication Types
// ============================================================================

// RegisterRequest creates a self-service account with the default role.
type RegisterRequest struct {
	Username    string `json:"username" example:"bob"`
	Email       string `json:"email" example:"bob@example.com"`
	Password    string `json:"password" example:"Abc12345!"`
	FirstName   string `json:"first_name" example:"Bob"`
	LastName    string `json:"last_name" example:"Builder"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// LoginRequest accepts a username or an email as the identifier.
type LoginRequest struct {
	Username string `json:"username" example:"bob"`
	Password string `json:"password" example:"Abc12345!"`
}

// LoginResponse carries the signed session token.
type LoginResponse struct {
	// AccessToken is the HS256 session token
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the token lifetime in seconds
	ExpiresIn int `json:"expires_in"`

	// ExpiresAt is the absolute expiry of the token
	ExpiresAt time.Time `json:"expires_at"`

	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// ForgotPasswordRequest asks for a reset link to be mailed.
type ForgotPasswordRequest struct {
	Email string `json:"email" example:"bob@example.com"`
}

// ResetPasswordRequest redeems a mailed reset token.
type ResetPasswordRequest struct {
	Email       string `json:"email" example:"bob@example.com"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password" example:"Xyz98765#"`
}

// ============================================================================
// User Types
// ============================================================================

// UserResponse is the public view of an account. The password hash is
// never exposed.
type UserResponse struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email,omitempty"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	PhoneNumber       string     `json:"phone_number,omitempty"`
	Enabled           bool       `json:"enabled"`
	Role              string     `json:"role"`
	LockoutEnd        *time.Time `json:"lockout_end,omitempty"`
	AccessFailedCount int        `json:"access_failed_count"`

	// ConcurrencyStamp must be sent back unchanged on update
	ConcurrencyStamp string `json:"concurrency_stamp"`

	CreatedAt  time.Time `json:"created_at"`
	CreatedBy  string    `json:"created_by,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
	ModifiedBy string    `json:"modified_by,omitempty"`
}

// ListUsersResponse contains all accounts.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// CreateUserRequest is the administrative create.
type CreateUserRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Role        string `json:"role" example:"User"`
	Enabled     bool   `json:"enabled"`
}

// UpdateUserRequest is the administrative update. Empty Email, PhoneNumber
// or Role keep the stored value.
type UpdateUserRequest struct {
	Email            string `json:"email,omitempty"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	PhoneNumber      string `json:"phone_number,omitempty"`
	Role             string `json:"role,omitempty"`
	Enabled          bool   `json:"enabled"`
	ConcurrencyStamp string `json:"concurrency_stamp"`
}

// SetEnabledRequest enables or disables an account.
type SetEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// AddRoleRequest grants a role by name.
type AddRoleRequest struct {
	Role string `json:"role" example:"Admin"`
}

// ============================================================================
// Role Types
// ============================================================================

// RoleInfo represents a single role in the system.
type RoleInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListRolesResponse contains the list of all roles.
type ListRolesResponse struct {
	Roles []RoleInfo `json:"roles"`
}

// ============================================================================
// SMTP Settings Types
// ============================================================================

// SmtpSettingsRequest saves the outbound mail configuration. An empty
// Password keeps the stored one.
type SmtpSettingsRequest struct {
	Host           string `json:"host" example:"smtp.example.com"`
	Port           int    `json:"port" example:"587"`
	Username       string `json:"username,omitempty"`
	Password       string `json:"password,omitempty"`
	SenderEmail    string `json:"sender_email,omitempty"`
	SenderName     string `json:"sender_name,omitempty"`
	Authentication bool   `json:"authentication"`
	EnableSsl      bool   `json:"enable_ssl"`
	Enabled        bool   `json:"enabled"`
}

// SmtpSettingsResponse never carries the password.
type SmtpSettingsResponse struct {
	Host           string    `json:"host"`
	Port           int       `json:"port"`
	Username       string    `json:"username,omitempty"`
	HasPassword    bool      `json:"has_password"`
	SenderEmail    string    `json:"sender_email,omitempty"`
	SenderName     string    `json:"sender_name,omitempty"`
	Authentication bool      `json:"authentication"`
	EnableSsl      bool      `json:"enable_ssl"`
	Enabled        bool      `json:"enabled"`
	UpdatedAt      time.Time `json:"updated_at"`
	ModifiedBy     string    `json:"modified_by,omitempty"`
}

// ============================================================================
// Bootstrap Types
// ============================================================================

// BootstrapRequest creates the first administrator.
type BootstrapRequest struct {
	Username  string `json:"username" example:"admin"`
	Email     string `json:"email,omitempty" example:"admin@example.com"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// BootstrapResponse contains the ID of the created administrator.
type BootstrapResponse struct {
	AdminUserID string `json:"admin_user_id"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// ResetTokens indicates the reset-token store status
	ResetTokens string `json:"reset_tokens"`
}
