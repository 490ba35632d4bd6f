package models

import "errors"

// Domain errors surfaced to clients as "ERROR: <message>" plain text.
// Handlers wrap these with context via fmt.Errorf("...: %w", err); the
// router's central error writer picks the status from the sentinel.
var (
	// ErrInvalidRequest marks a malformed or incomplete request. Client bug,
	// never retried.
	ErrInvalidRequest = errors.New("Invalid request")

	// ErrInvalidCredentials marks a failed hash comparison on login or a
	// changePassword precondition miss.
	ErrInvalidCredentials = errors.New("Invalid password")

	// ErrUserNotFound marks a lookup of a nonexistent username.
	ErrUserNotFound = errors.New("User not found")

	// ErrAlreadyExists marks a signup that collided with an existing
	// username or email.
	ErrAlreadyExists = errors.New("Could not create user")

	// ErrNotFound marks a missing project.
	ErrNotFound = errors.New("Project not found")

	// ErrNotLoggedIn marks a descriptor request from an anonymous session.
	ErrNotLoggedIn = errors.New("Not logged in")

	// ErrStorage marks a backend failure. Safe to retry at the caller since
	// every write is idempotent or conditioned.
	ErrStorage = errors.New("Database error")

	// ErrMail marks a delivery failure. The account or password mutation
	// that triggered the mail has already been applied and stays applied.
	ErrMail = errors.New("Could not send email")
)
