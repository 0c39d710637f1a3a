// Package user defines the user model used throughout the application,
// particularly for authentication and user-specific URL storage.
package user

// User represents a registered system user.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string

	// Email is the registration email. It is unique across all users and
	// compared case-sensitively, exactly as stored.
	Email string

	// PasswordHash is the bcrypt hash of the registration password.
	// The plaintext password is never stored.
	PasswordHash string
}
