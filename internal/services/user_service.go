package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/Senjuv/healt-tracker/internal/models"
)

// UserService owns the PostgreSQL account rows. Anonymous users are full
// rows too: they give drop-in visitors a stable identity to scope records
// under without collecting anything.
type UserService struct {
	db *sql.DB
}

func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// CreateAnonymous inserts an identity-only user row.
func (s *UserService) CreateAnonymous(ctx context.Context) (*models.User, error) {
	id := uuid.New()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, anonymous, created_at, last_seen_at) VALUES ($1, TRUE, $2, $2)`,
		id, now,
	)
	if err != nil {
		return nil, err
	}
	return &models.User{ID: id, Anonymous: true, CreatedAt: now, LastSeenAt: now}, nil
}

// CreateRegistered inserts a named account. encryptedEmail may be empty; it
// is already AES-GCM encrypted by the caller and never stored in plaintext.
func (s *UserService) CreateRegistered(ctx context.Context, username, passwordHash, encryptedEmail string) (*models.User, error) {
	id := uuid.New()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, recovery_email_encrypted, anonymous, created_at, last_seen_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), FALSE, $5, $5)`,
		id, username, passwordHash, encryptedEmail, now,
	)
	if err != nil {
		return nil, err
	}
	return &models.User{ID: id, Username: username, CreatedAt: now, LastSeenAt: now}, nil
}

// GetByUsername looks up a registered account (case-insensitive).
// Returns (nil, nil) when no such user exists.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	var storedUsername sql.NullString
	var passwordHash sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, anonymous, created_at, last_seen_at
		 FROM users WHERE LOWER(username) = LOWER($1)`,
		username,
	).Scan(&u.ID, &storedUsername, &passwordHash, &u.Anonymous, &u.CreatedAt, &u.LastSeenAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Username = storedUsername.String
	u.PasswordHash = passwordHash.String
	return &u, nil
}

// GetByID looks up any account. Returns (nil, nil) when no such user exists.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	var storedUsername sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, anonymous, created_at, last_seen_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &storedUsername, &u.Anonymous, &u.CreatedAt, &u.LastSeenAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Username = storedUsername.String
	return &u, nil
}

// TouchLastSeen refreshes the activity timestamp; failures are not fatal to
// the request that triggered it.
func (s *UserService) TouchLastSeen(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_seen_at = NOW() WHERE id = $1`, id)
	return err
}
