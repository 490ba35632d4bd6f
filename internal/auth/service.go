package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/snapcloud/snapcloud-server/internal/mail"
	"github.com/snapcloud/snapcloud-server/internal/models"
)

// UserRepo is the persistence contract for accounts. Implementations must
// make the write itself the authority for uniqueness: Create classifies
// duplicate-key failures as models.ErrAlreadyExists rather than relying on
// a racy check-then-insert, and the conditioned updates apply only when
// their precondition row matches.
type UserRepo interface {
	// Create inserts a new user. models.ErrAlreadyExists if the username
	// or email is taken.
	Create(ctx context.Context, username, email, hash string) error

	// Get returns the user, or models.ErrUserNotFound.
	Get(ctx context.Context, username string) (*models.User, error)

	// SetPassword unconditionally replaces the hash and returns the
	// account's on-file email. models.ErrUserNotFound if absent.
	SetPassword(ctx context.Context, username, newHash string) (email string, err error)

	// SetPasswordIf replaces the hash only when the stored hash equals
	// oldHash, as one atomic conditioned write.
	// models.ErrInvalidCredentials when the precondition misses.
	SetPasswordIf(ctx context.Context, username, oldHash, newHash string) error

	// SetEmail changes the account email. models.ErrAlreadyExists if
	// another user owns it, models.ErrUserNotFound if the user is absent.
	SetEmail(ctx context.Context, username, email string) error

	// Delete removes an account. Rarely used; reports whether a row was
	// removed.
	Delete(ctx context.Context, username string) (bool, error)
}

// Service implements signup, login, and the password lifecycle.
type Service struct {
	users  UserRepo
	mailer mail.Mailer
	log    *slog.Logger
}

func NewService(users UserRepo, mailer mail.Mailer, log *slog.Logger) *Service {
	return &Service{users: users, mailer: mailer, log: log}
}

func passwordMail(username, password string) (subject, body string) {
	subject = "Temporary Password"
	body = "Hello " + username +
		"!\n\nYour Snap password has been temporarily set to: " + password +
		". Please change it after logging in."
	return subject, body
}

// Signup creates an account with a random initial password and mails the
// plaintext to the user. When awaitMail is false the mail is sent in the
// background and delivery failures are only logged; account creation has
// already happened either way and is never rolled back.
func (s *Service) Signup(ctx context.Context, username, email string, awaitMail bool) error {
	if username == "" || email == "" {
		return fmt.Errorf("signup: %w", models.ErrInvalidRequest)
	}

	password, err := GeneratePassword()
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	if err := s.users.Create(ctx, username, email, HashPassword(password)); err != nil {
		return fmt.Errorf("signup %q: %w", username, err)
	}
	s.log.Info("user created", "user", username)

	subject, body := passwordMail(username, password)
	if awaitMail {
		if err := s.mailer.Send(ctx, email, subject, body); err != nil {
			return fmt.Errorf("signup %q: %v: %w", username, err, models.ErrMail)
		}
		return nil
	}
	go func() {
		if err := s.mailer.Send(context.Background(), email, subject, body); err != nil {
			s.log.Error("signup mail failed", "user", username, "err", err)
		}
	}()
	return nil
}

// Login verifies the client-supplied hash against the stored one. The
// protocol never transmits plaintext; the comparison is digest to digest.
func (s *Service) Login(ctx context.Context, username, providedHash string) (*models.User, error) {
	if username == "" || providedHash == "" {
		return nil, fmt.Errorf("login: %w", models.ErrInvalidRequest)
	}
	user, err := s.users.Get(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("login %q: %w", username, err)
	}
	if !HashEqual(providedHash, user.PasswordHash) {
		return nil, fmt.Errorf("login %q: %w", username, models.ErrInvalidCredentials)
	}
	return user, nil
}

// ResetPassword rotates the credential to a fresh random password and
// mails it to the on-file address. Deliberately unauthenticated: knowing a
// username is enough to force a rotation, but the plaintext only ever goes
// to the address already on the account. The response waits on the mail.
func (s *Service) ResetPassword(ctx context.Context, username string) error {
	if username == "" {
		return fmt.Errorf("reset: %w", models.ErrInvalidRequest)
	}
	password, err := GeneratePassword()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	email, err := s.users.SetPassword(ctx, username, HashPassword(password))
	if err != nil {
		return fmt.Errorf("reset %q: %w", username, err)
	}
	s.log.Info("password reset", "user", username)

	subject, body := passwordMail(username, password)
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		return fmt.Errorf("reset %q: %v: %w", username, err, models.ErrMail)
	}
	return nil
}

// ChangePassword applies the new hash only if oldHash still matches the
// stored one, as a single conditioned write.
func (s *Service) ChangePassword(ctx context.Context, username, oldHash, newHash string) error {
	if username == "" || oldHash == "" || newHash == "" {
		return fmt.Errorf("change password: %w", models.ErrInvalidRequest)
	}
	if err := s.users.SetPasswordIf(ctx, username, oldHash, newHash); err != nil {
		return fmt.Errorf("change password %q: %w", username, err)
	}
	s.log.Info("password changed", "user", username)
	return nil
}

// SetEmail changes the account's address, rejecting one already owned by
// another user.
func (s *Service) SetEmail(ctx context.Context, username, email string) error {
	if username == "" || email == "" {
		return fmt.Errorf("set email: %w", models.ErrInvalidRequest)
	}
	if err := s.users.SetEmail(ctx, username, email); err != nil {
		return fmt.Errorf("set email %q: %w", username, err)
	}
	return nil
}
