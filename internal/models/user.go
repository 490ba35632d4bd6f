package models

import "time"

// User represents a row in the PostgreSQL users table. The password hash is
// a sha512 hex digest; clients hash before transmitting, so the server never
// sees the plaintext credential on the login path.
type User struct {
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialize
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
