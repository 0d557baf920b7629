/*
Package authsdk provides a client SDK for the WorkoutTracker identity service.

# SDKClient vs Session

  - SDKClient: public operations (register, login, password reset, bootstrap, health)
  - Session: operations that need the session token returned by Login

	client := authsdk.NewSDKClient("https://identity.example.com")

	_, err := client.Register(ctx, authsdk.RegisterRequest{
		Username:  "bob",
		Email:     "bob@example.com",
		Password:  "Abc12345!",
		FirstName: "Bob",
		LastName:  "Builder",
	})

	session, err := client.Login(ctx, "bob", "Abc12345!")
	me, err := session.Me(ctx)

Administrative calls (users, roles, SMTP settings) need a session whose user
holds the Admin role.

# Tokens

Session tokens are HS256 JWTs with a fixed lifetime. There is no refresh
token: once a Session reports ErrSessionExpired, log in again. Logout forgets
the token locally; the service keeps no revocation list.

# Errors

Non-2xx responses are returned as *APIError. Use IsCode to branch on the
error code:

	_, err := client.Login(ctx, "bob", "wrong")
	if authsdk.IsCode(err, authsdk.ErrorCodeAccountLocked) {
		var apiErr *authsdk.APIError
		errors.As(err, &apiErr)
		fmt.Println("locked until", apiErr.LockedUntil)
	}

Validation failures carry per-field messages in APIError.Fields.

# Concurrency

Updates to a user must echo the concurrency_stamp from the last read. A
stale stamp yields ErrorCodeStaleObjectState; re-read and retry.
*/
package authsdk
