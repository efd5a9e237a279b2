package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SyndicateMember is a confirmed link between a user and a syndicate created
// by invitation redemption.
type SyndicateMember struct {
	ID          string
	SyndicateID string
	UserID      string
	JoinedAt    time.Time
	User        *User
}

type MemberRepository interface {
	Create(ctx context.Context, member *SyndicateMember) error
	FindBySyndicateID(ctx context.Context, syndicateID string) ([]*SyndicateMember, error)
	FindByUserID(ctx context.Context, userID string) ([]*SyndicateMember, error)
	IsMember(ctx context.Context, syndicateID, userID string) (bool, error)
}

type pgMemberRepository struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &pgMemberRepository{pool: pool}
}

func (r *pgMemberRepository) Create(ctx context.Context, member *SyndicateMember) error {
	// ON CONFLICT keeps a user who redeems two tokens for the same syndicate
	// from appearing twice.
	query := `
		INSERT INTO syndicate_members (syndicate_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (syndicate_id, user_id) DO NOTHING
		RETURNING id, joined_at
	`
	row := r.pool.QueryRow(ctx, query, member.SyndicateID, member.UserID)
	if err := row.Scan(&member.ID, &member.JoinedAt); err != nil {
		// No row returned means the membership already existed; that is not
		// an error for redemption purposes.
		if err == pgx.ErrNoRows {
			return nil
		}
		return err
	}
	return nil
}

func (r *pgMemberRepository) FindBySyndicateID(ctx context.Context, syndicateID string) ([]*SyndicateMember, error) {
	query := `
		SELECT m.id, m.syndicate_id, m.user_id, m.joined_at,
		       u.id, u.email, u.first_name, u.last_name, u.phone, u.zip_code
		FROM syndicate_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.syndicate_id = $1
		ORDER BY m.joined_at
	`
	rows, err := r.pool.Query(ctx, query, syndicateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*SyndicateMember
	for rows.Next() {
		m := &SyndicateMember{User: &User{}}
		if err := rows.Scan(
			&m.ID, &m.SyndicateID, &m.UserID, &m.JoinedAt,
			&m.User.ID, &m.User.Email, &m.User.FirstName, &m.User.LastName,
			&m.User.Phone, &m.User.ZipCode,
		); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

func (r *pgMemberRepository) FindByUserID(ctx context.Context, userID string) ([]*SyndicateMember, error) {
	query := `
		SELECT id, syndicate_id, user_id, joined_at
		FROM syndicate_members WHERE user_id = $1
		ORDER BY joined_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*SyndicateMember
	for rows.Next() {
		m := &SyndicateMember{}
		if err := rows.Scan(&m.ID, &m.SyndicateID, &m.UserID, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

func (r *pgMemberRepository) IsMember(ctx context.Context, syndicateID, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM syndicate_members WHERE syndicate_id = $1 AND user_id = $2)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, syndicateID, userID).Scan(&exists)
	return exists, err
}
