package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Invitation is a single-use pairing of a token to a syndicate. It is
// consumed by deletion: once redeemed the row is gone.
type Invitation struct {
	ID          string
	SyndicateID string
	Email       string
	Token       string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

type InvitationRepository interface {
	Create(ctx context.Context, invitation *Invitation) error
	FindBySyndicateID(ctx context.Context, syndicateID string) ([]*Invitation, error)
	// RedeemByToken atomically deletes the invitation matching the token and
	// returns its syndicate ID. Exactly one concurrent caller can win; all
	// others see found = false.
	RedeemByToken(ctx context.Context, token string) (syndicateID string, found bool, err error)
	DeleteExpired(ctx context.Context) (int, error)
}

type pgInvitationRepository struct {
	pool *pgxpool.Pool
}

func NewInvitationRepository(pool *pgxpool.Pool) InvitationRepository {
	return &pgInvitationRepository{pool: pool}
}

func (r *pgInvitationRepository) Create(ctx context.Context, invitation *Invitation) error {
	query := `
		INSERT INTO invitations (syndicate_id, email, token, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		invitation.SyndicateID, invitation.Email, invitation.Token, invitation.ExpiresAt,
	).Scan(&invitation.ID, &invitation.CreatedAt)
}

func (r *pgInvitationRepository) FindBySyndicateID(ctx context.Context, syndicateID string) ([]*Invitation, error) {
	query := `
		SELECT id, syndicate_id, email, token, expires_at, created_at
		FROM invitations WHERE syndicate_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, syndicateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []*Invitation
	for rows.Next() {
		invitation := &Invitation{}
		if err := rows.Scan(
			&invitation.ID, &invitation.SyndicateID, &invitation.Email,
			&invitation.Token, &invitation.ExpiresAt, &invitation.CreatedAt,
		); err != nil {
			return nil, err
		}
		invitations = append(invitations, invitation)
	}
	return invitations, nil
}

func (r *pgInvitationRepository) RedeemByToken(ctx context.Context, token string) (string, bool, error) {
	// An expired invitation is left for the purge job; to the caller it is
	// indistinguishable from an unknown token.
	query := `DELETE FROM invitations WHERE token = $1 AND expires_at > NOW() RETURNING syndicate_id`
	var syndicateID string
	err := r.pool.QueryRow(ctx, query, token).Scan(&syndicateID)
	if err == pgx.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return syndicateID, true, nil
}

func (r *pgInvitationRepository) DeleteExpired(ctx context.Context) (int, error) {
	query := `DELETE FROM invitations WHERE expires_at < NOW()`
	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return int(result.RowsAffected()), nil
}
