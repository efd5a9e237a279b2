package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type User struct {
	ID                     string
	Email                  string
	Password               string
	FirstName              *string
	LastName               *string
	Phone                  *string
	ZipCode                *string
	IsActive               bool
	EmailConfirmationToken *string
	ResetKey               *string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

type RefreshToken struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByConfirmationToken(ctx context.Context, token string) (*User, error)
	FindByResetKey(ctx context.Context, resetKey string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, userID, hashedPassword string) error
	Activate(ctx context.Context, userID string) error
	SetResetKey(ctx context.Context, userID string, resetKey *string) error
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteUserRefreshTokens(ctx context.Context, userID string) error
}

type pgUserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &pgUserRepository{pool: pool}
}

const userColumns = `id, email, password, first_name, last_name, phone, zip_code,
		is_active, email_confirmation_token, reset_key, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.Password, &user.FirstName, &user.LastName,
		&user.Phone, &user.ZipCode, &user.IsActive, &user.EmailConfirmationToken,
		&user.ResetKey, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (email, password, first_name, last_name, phone, zip_code, is_active, email_confirmation_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		user.Email, user.Password, user.FirstName, user.LastName,
		user.Phone, user.ZipCode, user.IsActive, user.EmailConfirmationToken,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *pgUserRepository) FindByConfirmationToken(ctx context.Context, token string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email_confirmation_token = $1`
	return scanUser(r.pool.QueryRow(ctx, query, token))
}

func (r *pgUserRepository) FindByResetKey(ctx context.Context, resetKey string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_key = $1`
	return scanUser(r.pool.QueryRow(ctx, query, resetKey))
}

func (r *pgUserRepository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET email = $2, first_name = $3, last_name = $4, phone = $5, zip_code = $6,
		    is_active = $7, email_confirmation_token = $8, reset_key = $9, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.FirstName, user.LastName, user.Phone,
		user.ZipCode, user.IsActive, user.EmailConfirmationToken, user.ResetKey,
	)
	return err
}

func (r *pgUserRepository) UpdatePassword(ctx context.Context, userID, hashedPassword string) error {
	query := `UPDATE users SET password = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, userID, hashedPassword)
	return err
}

func (r *pgUserRepository) Activate(ctx context.Context, userID string) error {
	query := `
		UPDATE users SET is_active = TRUE, email_confirmation_token = NULL, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

func (r *pgUserRepository) SetResetKey(ctx context.Context, userID string, resetKey *string) error {
	query := `UPDATE users SET reset_key = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, userID, resetKey)
	return err
}

func (r *pgUserRepository) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query, token.Token, token.UserID, token.ExpiresAt).
		Scan(&token.ID, &token.CreatedAt)
}

func (r *pgUserRepository) FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	query := `
		SELECT id, token, user_id, expires_at, created_at
		FROM refresh_tokens WHERE token = $1
	`
	rt := &RefreshToken{}
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&rt.ID, &rt.Token, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *pgUserRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	query := `DELETE FROM refresh_tokens WHERE token = $1`
	_, err := r.pool.Exec(ctx, query, token)
	return err
}

func (r *pgUserRepository) DeleteUserRefreshTokens(ctx context.Context, userID string) error {
	query := `DELETE FROM refresh_tokens WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}
