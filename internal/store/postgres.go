package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapcloud/snapcloud-server/internal/models"
)

// PostgresUserRepo handles account CRUD against PostgreSQL. The unique
// constraints on username and email make the insert the authority for
// uniqueness; duplicate-key failures are classified, not pre-checked.
type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

// Migrate creates the users table if it doesn't exist.
func (s *PostgresUserRepo) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			username      VARCHAR(50)  PRIMARY KEY,
			email         VARCHAR(255) UNIQUE NOT NULL,
			password_hash CHAR(128)    NOT NULL,
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (s *PostgresUserRepo) Create(ctx context.Context, username, email, hash string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3)`,
		username, email, hash,
	)
	if isUniqueViolation(err) {
		return models.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %v: %w", err, models.ErrStorage)
	}
	return nil
}

func (s *PostgresUserRepo) Get(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT username, email, password_hash, created_at, updated_at
		 FROM users WHERE username = $1`, username,
	).Scan(&u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %v: %w", err, models.ErrStorage)
	}
	return &u, nil
}

func (s *PostgresUserRepo) SetPassword(ctx context.Context, username, newHash string) (string, error) {
	var email string
	err := s.pool.QueryRow(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW()
		 WHERE username = $1
		 RETURNING email`, username, newHash,
	).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", models.ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("update password: %v: %w", err, models.ErrStorage)
	}
	return email, nil
}

// SetPasswordIf is the conditioned write behind changePassword: the
// precondition and the update are one statement, so a concurrent change
// cannot be silently overwritten.
func (s *PostgresUserRepo) SetPasswordIf(ctx context.Context, username, oldHash, newHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $3, updated_at = NOW()
		 WHERE username = $1 AND password_hash = $2`,
		username, oldHash, newHash,
	)
	if err != nil {
		return fmt.Errorf("update password: %v: %w", err, models.ErrStorage)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrInvalidCredentials
	}
	return nil
}

func (s *PostgresUserRepo) SetEmail(ctx context.Context, username, email string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET email = $2, updated_at = NOW() WHERE username = $1`,
		username, email,
	)
	if isUniqueViolation(err) {
		return models.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("update email: %v: %w", err, models.ErrStorage)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (s *PostgresUserRepo) Delete(ctx context.Context, username string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return false, fmt.Errorf("delete user: %v: %w", err, models.ErrStorage)
	}
	return tag.RowsAffected() > 0, nil
}
