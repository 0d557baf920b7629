package http

import (
	"net/http"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
	"github.com/aussiebroadwan/workouttracker/internal/auth/service"
	"github.com/aussiebroadwan/workouttracker/pkg/authsdk"
	"github.com/aussiebroadwan/workouttracker/pkg/httpx"
)

type SmtpSettingsHandler struct {
	SmtpSettingsService *service.SmtpSettingsService
}

func toSmtpSettingsResponse(s domain.SmtpSettings) authsdk.SmtpSettingsResponse {
	return authsdk.SmtpSettingsResponse{
		Host:           s.Host,
		Port:           s.Port,
		Username:       s.Username,
		HasPassword:    s.Password != "",
		SenderEmail:    s.SenderEmail,
		SenderName:     s.SenderName,
		Authentication: s.Authentication,
		EnableSsl:      s.EnableSsl,
		Enabled:        s.Enabled,
		UpdatedAt:      s.UpdatedAt,
		ModifiedBy:     s.ModifiedBy,
	}
}

// HandleGet returns the mail settings.
//
//	@Summary		Get SMTP settings
//	@Description	The password is never returned; has_password reports whether one is stored.
//	@Tags			SMTP
//	@Produce		json
//	@Success		200	{object}	authsdk.SmtpSettingsResponse
//	@Failure		503	{object}	authsdk.ErrorResponse	"Mail not configured"
//	@Security		BearerAuth
//	@Router			/v1/smtp-settings [get].
func (h *SmtpSettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.SmtpSettingsService.Current(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSmtpSettingsResponse(s))
}

// HandlePut stores the mail settings.
//
//	@Summary		Save SMTP settings
//	@Description	The password is encrypted before storage. Omit it to keep the stored one.
//	@Tags			SMTP
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.SmtpSettingsRequest	true	"Settings"
//	@Success		200		{object}	authsdk.SmtpSettingsResponse
//	@Failure		400		{object}	authsdk.ValidationErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/smtp-settings [put].
func (h *SmtpSettingsHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SmtpSettingsRequest
	if !decode(w, r, &req) {
		return
	}

	s, err := h.SmtpSettingsService.Save(r.Context(), service.SmtpSettingsInput{
		Host:           req.Host,
		Port:           req.Port,
		Username:       req.Username,
		Password:       req.Password,
		SenderEmail:    req.SenderEmail,
		SenderName:     req.SenderName,
		Authentication: req.Authentication,
		EnableSsl:      req.EnableSsl,
		Enabled:        req.Enabled,
	}, actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSmtpSettingsResponse(s))
}
