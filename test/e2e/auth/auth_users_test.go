package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/workouttracker/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestAdminUserLifecycle covers create, update, role changes, disable and delete.
func TestAdminUserLifecycle(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)
	ctx := t.Context()

	created, err := admin.CreateUser(ctx, authsdk.CreateUserRequest{
		Username:  "carol@example.com",
		Password:  userPassword,
		FirstName: "Carol",
		Role:      "User",
		Enabled:   true,
	})
	require.NoError(t, err)
	require.Equal(t, "carol@example.com", created.Email, "email defaults to an email-shaped username")
	require.Equal(t, adminUsername, created.CreatedBy)

	updated, err := admin.UpdateUser(ctx, created.ID, authsdk.UpdateUserRequest{
		Email:            "carol@work.example.com",
		FirstName:        "Caroline",
		LastName:         "Smith",
		Role:             "Admin",
		Enabled:          true,
		ConcurrencyStamp: created.ConcurrencyStamp,
	})
	require.NoError(t, err)
	require.Equal(t, "Admin", updated.Role)
	require.NotEqual(t, created.ConcurrencyStamp, updated.ConcurrencyStamp)

	// A second update with the old stamp is stale
	_, err = admin.UpdateUser(ctx, created.ID, authsdk.UpdateUserRequest{
		FirstName:        "Carrie",
		Enabled:          true,
		ConcurrencyStamp: created.ConcurrencyStamp,
	})
	assertAPIError(t, err, http.StatusConflict, authsdk.ErrorCodeStaleObjectState)

	disabled, err := admin.SetUserEnabled(ctx, created.ID, false)
	require.NoError(t, err)
	require.False(t, disabled.Enabled)

	_, err = client.Login(ctx, "carol@example.com", userPassword)
	assertAPIError(t, err, http.StatusForbidden, authsdk.ErrorCodeAccountDisabled)

	require.NoError(t, admin.DeleteUser(ctx, created.ID))
	_, err = admin.GetUser(ctx, created.ID)
	assertAPIError(t, err, http.StatusNotFound, "")
}

// TestAdminEndpointsRequireAdmin verifies a plain user cannot reach administration.
func TestAdminEndpointsRequireAdmin(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerUser(t, client, "bob", "bob@example.com")
	session := performLogin(t, client, "bob", userPassword)

	_, err := session.ListUsers(t.Context())
	assertAPIError(t, err, http.StatusForbidden, "")

	_, err = session.ListRoles(t.Context())
	assertAPIError(t, err, http.StatusForbidden, "")

	_, err = session.GetSmtpSettings(t.Context())
	assertAPIError(t, err, http.StatusForbidden, "")
}

// TestRolesAndSmtpSettings verifies the seeded roles and that the SMTP
// password never comes back.
func TestRolesAndSmtpSettings(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)
	ctx := t.Context()

	roles, err := admin.ListRoles(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(roles.Roles))
	for _, r := range roles.Roles {
		names = append(names, r.Name)
	}
	require.ElementsMatch(t, []string{"Admin", "User"}, names)

	_, err = admin.GetSmtpSettings(ctx)
	assertAPIError(t, err, http.StatusServiceUnavailable, authsdk.ErrorCodeMailNotConfigured)

	saved, err := admin.SaveSmtpSettings(ctx, authsdk.SmtpSettingsRequest{
		Host:           "smtp.example.com",
		Port:           587,
		Username:       "mailer",
		Password:       "smtp-secret",
		SenderEmail:    "noreply@example.com",
		Authentication: true,
		Enabled:        false,
	})
	require.NoError(t, err)
	require.True(t, saved.HasPassword)

	// Disabled mail refuses reset requests
	err = client.ForgotPassword(ctx, adminEmail)
	assertAPIError(t, err, http.StatusServiceUnavailable, authsdk.ErrorCodeMailDisabled)
}
