package http

import (
	"net/http"

	"github.com/aussiebroadwan/workouttracker/internal/auth/service"
	"github.com/aussiebroadwan/workouttracker/pkg/authsdk"
	"github.com/aussiebroadwan/workouttracker/pkg/httpx"
)

type AuthHandler struct {
	AuthService          *service.AuthService
	PasswordResetService *service.PasswordResetService
}

// HandleRegister creates a self-service account.
//
//	@Summary		Register an account
//	@Description	Creates an enabled account with the User role. A welcome mail is sent when mail is configured; failing to send it does not fail registration.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest			true	"Account details"
//	@Success		201		{object}	authsdk.UserResponse			"Created account"
//	@Failure		400		{object}	authsdk.ValidationErrorResponse	"Validation failed"
//	@Failure		409		{object}	authsdk.ErrorResponse			"Username or email already in use"
//	@Failure		429		{object}	authsdk.ErrorResponse			"Rate limit exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleLogin exchanges credentials for a session token.
//
//	@Summary		Log in
//	@Description	Accepts a username or email. Three consecutive failures lock the account for 30 minutes.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest			true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse			"Session token"
//	@Failure		400		{object}	authsdk.ValidationErrorResponse	"Missing fields"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Invalid username or password"
//	@Failure		403		{object}	authsdk.ErrorResponse			"Account disabled"
//	@Failure		423		{object}	authsdk.ErrorResponse			"Account locked; see locked_until"
//	@Failure		429		{object}	authsdk.ErrorResponse			"Rate limit exceeded"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	fields := map[string]string{}
	if req.Username == "" {
		fields["username"] = "username is required"
	}
	if req.Password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		writeValidation(w, fields)
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		AccessToken: res.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.AuthService.Issuer.TTL().Seconds()),
		ExpiresAt:   res.ExpiresAt.UTC(),
		UserID:      res.UserID,
		Username:    res.Username,
		Roles:       res.Roles,
	})
}

// HandleLogout ends the session on the client side.
//
//	@Summary		Log out
//	@Description	Acknowledges the logout. Tokens are not revoked; they expire on their own.
//	@Tags			Auth
//	@Success		204	"Logged out"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing or invalid token"
//	@Security		BearerAuth
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.UserIDFromContext(r.Context())
	if err := h.AuthService.Logout(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleForgotPassword mails a reset link.
//
//	@Summary		Request a password reset
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	authsdk.ForgotPasswordRequest	true	"Account email"
//	@Success		204		"Reset mail sent"
//	@Failure		404		{object}	authsdk.ErrorResponse	"No account with that email"
//	@Failure		503		{object}	authsdk.ErrorResponse	"Mail not configured or disabled"
//	@Router			/v1/auth/forgot-password [post].
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ForgotPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeValidation(w, map[string]string{"email": "email is required"})
		return
	}

	if err := h.PasswordResetService.RequestReset(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleResetPassword redeems a reset token.
//
//	@Summary		Reset a password
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	authsdk.ResetPasswordRequest	true	"Email, token and new password"
//	@Success		204		"Password changed"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Invalid or expired token, or weak password"
//	@Failure		404		{object}	authsdk.ErrorResponse	"No account with that email"
//	@Router			/v1/auth/reset-password [post].
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.PasswordResetService.ResetPassword(r.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
