package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Syndicate represents an investment group owned by one user.
type Syndicate struct {
	ID                   string
	UserID               string
	Name                 string
	Description          string
	PersonalNote         string
	Focus                string
	Industry             string
	Privacy              string
	Horizon              string
	Currency             string
	CapitalRaised        int64
	MinCommitment        int64
	LeadershipCommitment int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Owner                *User
}

type SyndicateRepository interface {
	// CreateWithInvitations persists the syndicate and its invitation rows in
	// one transaction. Either everything lands or nothing does.
	CreateWithInvitations(ctx context.Context, syndicate *Syndicate, invitations []*Invitation) error
	FindByID(ctx context.Context, id string) (*Syndicate, error)
	FindByUserID(ctx context.Context, userID string) ([]*Syndicate, error)
	Update(ctx context.Context, syndicate *Syndicate) error
}

type pgSyndicateRepository struct {
	pool *pgxpool.Pool
}

func NewSyndicateRepository(pool *pgxpool.Pool) SyndicateRepository {
	return &pgSyndicateRepository{pool: pool}
}

const syndicateColumns = `id, user_id, name, description, personal_note, focus,
		industry, privacy, horizon, currency, capital_raised, min_commitment,
		leadership_commitment, created_at, updated_at`

func scanSyndicate(row pgx.Row) (*Syndicate, error) {
	s := &Syndicate{}
	err := row.Scan(
		&s.ID, &s.UserID, &s.Name, &s.Description, &s.PersonalNote, &s.Focus,
		&s.Industry, &s.Privacy, &s.Horizon, &s.Currency, &s.CapitalRaised,
		&s.MinCommitment, &s.LeadershipCommitment, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *pgSyndicateRepository) CreateWithInvitations(ctx context.Context, syndicate *Syndicate, invitations []*Invitation) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO syndicates (user_id, name, description, personal_note, focus,
			industry, privacy, horizon, currency, capital_raised, min_commitment,
			leadership_commitment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		syndicate.UserID, syndicate.Name, syndicate.Description, syndicate.PersonalNote,
		syndicate.Focus, syndicate.Industry, syndicate.Privacy, syndicate.Horizon,
		syndicate.Currency, syndicate.CapitalRaised, syndicate.MinCommitment,
		syndicate.LeadershipCommitment,
	).Scan(&syndicate.ID, &syndicate.CreatedAt, &syndicate.UpdatedAt)
	if err != nil {
		return err
	}

	invQuery := `
		INSERT INTO invitations (syndicate_id, email, token, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	for _, inv := range invitations {
		inv.SyndicateID = syndicate.ID
		if err := tx.QueryRow(ctx, invQuery,
			inv.SyndicateID, inv.Email, inv.Token, inv.ExpiresAt,
		).Scan(&inv.ID, &inv.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *pgSyndicateRepository) FindByID(ctx context.Context, id string) (*Syndicate, error) {
	query := `SELECT ` + syndicateColumns + ` FROM syndicates WHERE id = $1`
	return scanSyndicate(r.pool.QueryRow(ctx, query, id))
}

func (r *pgSyndicateRepository) FindByUserID(ctx context.Context, userID string) ([]*Syndicate, error) {
	query := `SELECT ` + syndicateColumns + ` FROM syndicates WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var syndicates []*Syndicate
	for rows.Next() {
		s := &Syndicate{}
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.Name, &s.Description, &s.PersonalNote, &s.Focus,
			&s.Industry, &s.Privacy, &s.Horizon, &s.Currency, &s.CapitalRaised,
			&s.MinCommitment, &s.LeadershipCommitment, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		syndicates = append(syndicates, s)
	}
	return syndicates, nil
}

func (r *pgSyndicateRepository) Update(ctx context.Context, syndicate *Syndicate) error {
	query := `
		UPDATE syndicates
		SET name = $2, description = $3, personal_note = $4, focus = $5,
		    industry = $6, privacy = $7, horizon = $8, currency = $9,
		    capital_raised = $10, min_commitment = $11, leadership_commitment = $12,
		    updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		syndicate.ID, syndicate.Name, syndicate.Description, syndicate.PersonalNote,
		syndicate.Focus, syndicate.Industry, syndicate.Privacy, syndicate.Horizon,
		syndicate.Currency, syndicate.CapitalRaised, syndicate.MinCommitment,
		syndicate.LeadershipCommitment,
	)
	return err
}
