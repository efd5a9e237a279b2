package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all repository instances
type Repositories struct {
	UserRepo       UserRepository
	SyndicateRepo  SyndicateRepository
	InvitationRepo InvitationRepository
	MemberRepo     MemberRepository
}

// NewRepositories creates all repositories backed by the given pool
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepo:       NewUserRepository(pool),
		SyndicateRepo:  NewSyndicateRepository(pool),
		InvitationRepo: NewInvitationRepository(pool),
		MemberRepo:     NewMemberRepository(pool),
	}
}
