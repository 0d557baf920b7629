package auth_test

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/workouttracker/pkg/authsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for identity service end-to-end tests.
 * This includes container setup, service operations, and assertions.
 */

const (
	testImageName = "workouttracker-identity-test:latest"

	bootstrapToken = "test-bootstrap-token-12345"
	adminUsername  = "admin"
	adminEmail     = "admin@example.com"
	adminPassword  = "Admin123!"

	userPassword = "Abc12345!"
)

// TestMain manages the test lifecycle, builds the Docker image once before
// all tests and cleans it up after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Identity Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Identity Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

// buildDockerImage builds the test Docker image.
func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/identity/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

// cleanupDockerImage removes the test Docker image.
func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

func baseEnv() map[string]string {
	return map[string]string{
		"WT_AUTH_SIGNING_KEY": "e2e-signing-key-0123456789abcdef",
		"ENCRYPTION_KEY":      base64.StdEncoding.EncodeToString([]byte("e2e-encryption-key-0123456789abc")),
		"WT_BOOTSTRAP_TOKEN":  bootstrapToken,
		"WT_DATABASE_FILE":    "/data/workouttracker.db",
		"WT_PEPPER_FILE":      "/data/pepper",
		"WT_ENV":              "test",
		"WT_LOG_LEVEL":        "info",
		"WT_LOG_FORMAT":       "json",
	}
}

// setupAuthContainer starts the identity service with relaxed rate limits
// and returns the base URL.
func setupAuthContainer(t *testing.T) (string, func()) {
	t.Helper()

	env := baseEnv()
	// Tests make many rapid requests which would otherwise hit the strict production limits
	env["RATELIMIT_STRICT_REQUESTS"] = "1000"
	env["RATELIMIT_STRICT_WINDOW_SEC"] = "60"
	env["RATELIMIT_STRICT_BURST"] = "1000"
	env["RATELIMIT_MODERATE_REQUESTS"] = "1000"
	env["RATELIMIT_MODERATE_BURST"] = "1000"

	return startContainer(t, env)
}

// setupAuthContainerWithDefaultRateLimits starts the service with the
// production rate limits. Only rate limit tests should need it.
func setupAuthContainerWithDefaultRateLimits(t *testing.T) (string, func()) {
	t.Helper()
	return startContainer(t, baseEnv())
}

func startContainer(t *testing.T, env map[string]string) (string, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// bootstrapService creates the first admin account and returns its id.
func bootstrapService(t *testing.T, client *authsdk.SDKClient) string {
	t.Helper()

	resp, err := client.Bootstrap(t.Context(), bootstrapToken, authsdk.BootstrapRequest{
		Username: adminUsername,
		Email:    adminEmail,
		Password: adminPassword,
	})
	require.NoError(t, err, "Bootstrap should succeed")
	require.NotEmpty(t, resp.AdminUserID, "Admin user ID should not be empty")

	return resp.AdminUserID
}

// loginAdmin bootstraps the service and signs the admin in.
func loginAdmin(t *testing.T, client *authsdk.SDKClient) *authsdk.Session {
	t.Helper()
	bootstrapService(t, client)
	return performLogin(t, client, adminUsername, adminPassword)
}

// registerUser creates a self-service account.
func registerUser(t *testing.T, client *authsdk.SDKClient, username, email string) *authsdk.UserResponse {
	t.Helper()

	user, err := client.Register(t.Context(), authsdk.RegisterRequest{
		Username: username,
		Email:    email,
		Password: userPassword,
	})
	require.NoError(t, err, "Register should succeed")
	require.NotEmpty(t, user.ID)
	return user
}

// performLogin signs in and returns a session.
func performLogin(t *testing.T, client *authsdk.SDKClient, username, password string) *authsdk.Session {
	t.Helper()

	session, err := client.Login(t.Context(), username, password)
	require.NoError(t, err, "Login should succeed")
	require.NotNil(t, session)
	require.NotEmpty(t, session.AccessToken())

	return session
}

// assertAPIError checks that err is an API error with the given status and code.
func assertAPIError(t *testing.T, err error, status int, code string) *authsdk.APIError {
	t.Helper()
	require.Error(t, err)

	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected *authsdk.APIError, got %T: %v", err, err)
	require.Equal(t, status, apiErr.StatusCode, "unexpected status: %v", err)
	if code != "" {
		require.Equal(t, code, apiErr.Code, "unexpected error code: %v", err)
	}
	return apiErr
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
