package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/jobtrack/pkg/auth"
)

// UserRepository stores accounts with profile and preferences as JSONB.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) (*UserRepository, error) {
	r := &UserRepository{pool: pool}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *UserRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	username TEXT NOT NULL,
	email TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	profile JSONB NOT NULL DEFAULT '{}',
	preferences JSONB NOT NULL DEFAULT '{}',
	email_verified BOOLEAN NOT NULL DEFAULT FALSE,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	last_login TIMESTAMPTZ,
	verify_otp_hash TEXT NOT NULL DEFAULT '',
	verify_otp_expires TIMESTAMPTZ,
	reset_token_hash TEXT NOT NULL DEFAULT '',
	reset_expires TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	CONSTRAINT users_username_key UNIQUE (username),
	CONSTRAINT users_email_key UNIQUE (email)
);
CREATE INDEX IF NOT EXISTS idx_users_reset_token ON users(reset_token_hash) WHERE reset_token_hash <> '';
`)
	return err
}

const userColumns = `
id, username, email, password_hash, profile, preferences,
email_verified, is_active, last_login,
verify_otp_hash, verify_otp_expires, reset_token_hash, reset_expires,
created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, u auth.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	profile, err := json.Marshal(u.Profile)
	if err != nil {
		return err
	}
	prefs, err := json.Marshal(u.Preferences)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
INSERT INTO users (`+userColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`, u.ID, strings.ToLower(u.Username), strings.ToLower(u.Email), u.PasswordHash,
		profile, prefs, u.EmailVerified, u.IsActive, u.LastLogin,
		u.VerifyOTPHash, u.VerifyOTPExpires, u.ResetTokenHash, u.ResetExpires,
		u.CreatedAt, u.UpdatedAt)
	return mapUserConstraint(err)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (auth.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByLogin(ctx context.Context, login string) (auth.User, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1`, login)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (auth.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (auth.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) GetByResetTokenHash(ctx context.Context, hash string) (auth.User, error) {
	if hash == "" {
		return auth.User{}, auth.ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE reset_token_hash = $1`, hash)
}

func (r *UserRepository) Update(ctx context.Context, u auth.User) error {
	u.UpdatedAt = time.Now().UTC()

	profile, err := json.Marshal(u.Profile)
	if err != nil {
		return err
	}
	prefs, err := json.Marshal(u.Preferences)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users SET
	username = $2, email = $3, password_hash = $4,
	profile = $5, preferences = $6,
	email_verified = $7, is_active = $8, last_login = $9,
	verify_otp_hash = $10, verify_otp_expires = $11,
	reset_token_hash = $12, reset_expires = $13,
	updated_at = $14
WHERE id = $1
`, u.ID, strings.ToLower(u.Username), strings.ToLower(u.Email), u.PasswordHash,
		profile, prefs, u.EmailVerified, u.IsActive, u.LastLogin,
		u.VerifyOTPHash, u.VerifyOTPExpires, u.ResetTokenHash, u.ResetExpires,
		u.UpdatedAt)
	if err != nil {
		return mapUserConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...any) (auth.User, error) {
	var (
		u       auth.User
		profile []byte
		prefs   []byte
	)
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &profile, &prefs,
		&u.EmailVerified, &u.IsActive, &u.LastLogin,
		&u.VerifyOTPHash, &u.VerifyOTPExpires, &u.ResetTokenHash, &u.ResetExpires,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.User{}, auth.ErrNotFound
		}
		return auth.User{}, err
	}
	if err := json.Unmarshal(profile, &u.Profile); err != nil {
		return auth.User{}, err
	}
	if err := json.Unmarshal(prefs, &u.Preferences); err != nil {
		return auth.User{}, err
	}
	return u, nil
}

// mapUserConstraint translates unique violations into domain errors.
func mapUserConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return auth.ErrUsernameTaken
		case "users_email_key":
			return auth.ErrEmailTaken
		}
	}
	return err
}
