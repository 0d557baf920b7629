package domain

// BootstrapData describes the first administrator created on an empty system.
type BootstrapData struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}
