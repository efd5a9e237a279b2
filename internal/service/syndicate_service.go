package service

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"time"

	"github.com/leva-app/leva-backend/internal/config"
	"github.com/leva-app/leva-backend/internal/db"
	"github.com/leva-app/leva-backend/internal/repository"
	"github.com/leva-app/leva-backend/internal/token"
	"github.com/leva-app/leva-backend/internal/types"
)

// ============================================
// Syndicate Service
// ============================================

type CreateSyndicateInput struct {
	Name                 string
	Description          string
	PersonalNote         string
	Focus                string
	Industry             string
	Privacy              string
	Horizon              string
	Currency             string
	CapitalRaised        *int64
	MinCommitment        *int64
	LeadershipCommitment *int64
	MembersToInvite      []string
}

type UpdateSyndicateInput struct {
	Name                 *string
	Description          *string
	PersonalNote         *string
	Focus                *string
	Industry             *string
	Privacy              *string
	Horizon              *string
	Currency             *string
	CapitalRaised        *int64
	MinCommitment        *int64
	LeadershipCommitment *int64
}

type SyndicateService interface {
	Create(ctx context.Context, ownerID string, input CreateSyndicateInput) (*repository.Syndicate, error)
	Update(ctx context.Context, actorID, syndicateID string, input UpdateSyndicateInput) (*repository.Syndicate, error)
	GetByID(ctx context.Context, id string) (*repository.Syndicate, error)
	ListForUser(ctx context.Context, userID string) ([]*repository.Syndicate, error)
	ListMembers(ctx context.Context, actorID, syndicateID string) ([]*repository.SyndicateMember, error)
	ListMembershipsForUser(ctx context.Context, userID string) ([]*repository.SyndicateMember, error)
	ConfirmInvite(ctx context.Context, userID, inviteToken string) (*repository.SyndicateMember, error)
}

type syndicateService struct {
	syndicateRepo  repository.SyndicateRepository
	invitationRepo repository.InvitationRepository
	memberRepo     repository.MemberRepository
	userRepo       repository.UserRepository
	tokenGen       token.Generator
	mailer         Mailer
	cache          *db.RedisDB
	invitationTTL  time.Duration
}

const syndicateCacheTTL = time.Minute

func NewSyndicateService(
	cfg *config.Config,
	syndicateRepo repository.SyndicateRepository,
	invitationRepo repository.InvitationRepository,
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
	tokenGen token.Generator,
	mailer Mailer,
	cache *db.RedisDB,
) SyndicateService {
	return &syndicateService{
		syndicateRepo:  syndicateRepo,
		invitationRepo: invitationRepo,
		memberRepo:     memberRepo,
		userRepo:       userRepo,
		tokenGen:       tokenGen,
		mailer:         mailer,
		cache:          cache,
		invitationTTL:  time.Duration(cfg.InvitationTTL) * 24 * time.Hour,
	}
}

func (s *syndicateService) Create(ctx context.Context, ownerID string, input CreateSyndicateInput) (*repository.Syndicate, error) {
	owner, err := s.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up owner: %w", err)
	}
	if owner == nil {
		return nil, ErrUserNotFound
	}

	if verr := validateSyndicateFields(input); verr != nil {
		return nil, verr
	}

	invitations := make([]*repository.Invitation, 0, len(input.MembersToInvite))
	expiresAt := time.Now().Add(s.invitationTTL)
	for _, invitee := range input.MembersToInvite {
		invitee = normalizeEmail(invitee)
		if _, err := mail.ParseAddress(invitee); err != nil {
			verr := NewValidationError()
			verr.Add("members_to_invite", fmt.Sprintf("%s is not a valid email address.", invitee))
			return nil, verr
		}

		tok, err := s.tokenGen.Generate(invitee)
		if err != nil {
			return nil, fmt.Errorf("failed to generate invitation token: %w", err)
		}
		invitations = append(invitations, &repository.Invitation{
			Email:     invitee,
			Token:     tok,
			ExpiresAt: expiresAt,
		})
	}

	syndicate := &repository.Syndicate{
		UserID:               ownerID,
		Name:                 input.Name,
		Description:          input.Description,
		PersonalNote:         input.PersonalNote,
		Focus:                input.Focus,
		Industry:             input.Industry,
		Privacy:              input.Privacy,
		Horizon:              input.Horizon,
		Currency:             input.Currency,
		CapitalRaised:        *input.CapitalRaised,
		MinCommitment:        *input.MinCommitment,
		LeadershipCommitment: *input.LeadershipCommitment,
	}

	// Syndicate and invitation rows land in one transaction: either the whole
	// operation persists or none of it does.
	if err := s.syndicateRepo.CreateWithInvitations(ctx, syndicate, invitations); err != nil {
		return nil, fmt.Errorf("failed to create syndicate: %w", err)
	}
	syndicate.Owner = owner

	if s.mailer != nil {
		for _, inv := range invitations {
			go func(to, tok string) {
				if err := s.mailer.SendSyndicateInvitation(syndicate.Name, to, displayName(owner), tok); err != nil {
					log.Printf("[Email] failed to send invitation to %s: %v", to, err)
				}
			}(inv.Email, inv.Token)
		}
	}

	s.invalidateUserCache(ctx, ownerID)

	return syndicate, nil
}

func (s *syndicateService) Update(ctx context.Context, actorID, syndicateID string, input UpdateSyndicateInput) (*repository.Syndicate, error) {
	syndicate, err := s.syndicateRepo.FindByID(ctx, syndicateID)
	if err != nil {
		return nil, err
	}
	if syndicate == nil {
		return nil, ErrNotFound
	}
	if syndicate.UserID != actorID {
		return nil, ErrForbidden
	}

	if input.Name != nil {
		syndicate.Name = *input.Name
	}
	if input.Description != nil {
		syndicate.Description = *input.Description
	}
	if input.PersonalNote != nil {
		syndicate.PersonalNote = *input.PersonalNote
	}
	if input.Focus != nil {
		syndicate.Focus = *input.Focus
	}
	if input.Industry != nil {
		syndicate.Industry = *input.Industry
	}
	if input.Privacy != nil {
		syndicate.Privacy = *input.Privacy
	}
	if input.Horizon != nil {
		syndicate.Horizon = *input.Horizon
	}
	if input.Currency != nil {
		syndicate.Currency = *input.Currency
	}
	if input.CapitalRaised != nil {
		syndicate.CapitalRaised = *input.CapitalRaised
	}
	if input.MinCommitment != nil {
		syndicate.MinCommitment = *input.MinCommitment
	}
	if input.LeadershipCommitment != nil {
		syndicate.LeadershipCommitment = *input.LeadershipCommitment
	}

	if verr := validateSyndicateFields(CreateSyndicateInput{
		Name:                 syndicate.Name,
		Description:          syndicate.Description,
		PersonalNote:         syndicate.PersonalNote,
		Focus:                syndicate.Focus,
		Industry:             syndicate.Industry,
		Privacy:              syndicate.Privacy,
		Horizon:              syndicate.Horizon,
		Currency:             syndicate.Currency,
		CapitalRaised:        &syndicate.CapitalRaised,
		MinCommitment:        &syndicate.MinCommitment,
		LeadershipCommitment: &syndicate.LeadershipCommitment,
	}); verr != nil {
		return nil, verr
	}

	if err := s.syndicateRepo.Update(ctx, syndicate); err != nil {
		return nil, fmt.Errorf("failed to update syndicate: %w", err)
	}

	s.invalidateUserCache(ctx, syndicate.UserID)

	return syndicate, nil
}

func (s *syndicateService) GetByID(ctx context.Context, id string) (*repository.Syndicate, error) {
	syndicate, err := s.syndicateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if syndicate == nil {
		return nil, ErrNotFound
	}
	return syndicate, nil
}

func (s *syndicateService) ListForUser(ctx context.Context, userID string) ([]*repository.Syndicate, error) {
	cacheKey := "syndicates:user:" + userID
	if s.cache != nil {
		var cached []*repository.Syndicate
		if err := s.cache.GetCache(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	syndicates, err := s.syndicateRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCache(ctx, cacheKey, syndicates, syndicateCacheTTL); err != nil {
			log.Printf("[Cache] failed to cache syndicates for user %s: %v", userID, err)
		}
	}

	return syndicates, nil
}

func (s *syndicateService) ListMembers(ctx context.Context, actorID, syndicateID string) ([]*repository.SyndicateMember, error) {
	syndicate, err := s.syndicateRepo.FindByID(ctx, syndicateID)
	if err != nil {
		return nil, err
	}
	if syndicate == nil {
		return nil, ErrNotFound
	}

	// The roster is visible to the owner and to members only.
	if syndicate.UserID != actorID {
		isMember, err := s.memberRepo.IsMember(ctx, syndicateID, actorID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, ErrForbidden
		}
	}

	return s.memberRepo.FindBySyndicateID(ctx, syndicateID)
}

func (s *syndicateService) ListMembershipsForUser(ctx context.Context, userID string) ([]*repository.SyndicateMember, error) {
	return s.memberRepo.FindByUserID(ctx, userID)
}

func (s *syndicateService) ConfirmInvite(ctx context.Context, userID, inviteToken string) (*repository.SyndicateMember, error) {
	// Redemption is a conditional delete: the first caller to redeem a token
	// wins, every later caller (including a concurrent one) sees a miss.
	syndicateID, found, err := s.invitationRepo.RedeemByToken(ctx, inviteToken)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem token: %w", err)
	}
	if !found {
		return nil, ErrInvalidToken
	}

	member := &repository.SyndicateMember{
		SyndicateID: syndicateID,
		UserID:      userID,
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}
	return member, nil
}

func (s *syndicateService) invalidateUserCache(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCache(ctx, "syndicates:user:"+userID); err != nil {
		log.Printf("[Cache] failed to invalidate syndicates for user %s: %v", userID, err)
	}
}

// validateSyndicateFields checks every field and reports all failures at
// once; it never stops at the first bad field.
func validateSyndicateFields(input CreateSyndicateInput) *ValidationError {
	verr := NewValidationError()

	if input.Name == "" {
		verr.Add("name", "This field is required.")
	}
	if input.Description == "" {
		verr.Add("description", "This field is required.")
	}
	if input.PersonalNote == "" {
		verr.Add("personal_note", "This field is required.")
	}
	if !types.IsValidFocus(input.Focus) {
		verr.Add("focus", fmt.Sprintf("%q is not a valid choice.", input.Focus))
	}
	if !types.IsValidIndustry(input.Industry) {
		verr.Add("industry", fmt.Sprintf("%q is not a valid choice.", input.Industry))
	}
	if !types.IsValidPrivacy(input.Privacy) {
		verr.Add("privacy", fmt.Sprintf("%q is not a valid choice.", input.Privacy))
	}
	if !types.IsValidHorizon(input.Horizon) {
		verr.Add("horizon", fmt.Sprintf("%q is not a valid choice.", input.Horizon))
	}
	if !types.IsValidCurrency(input.Currency) {
		verr.Add("currency", fmt.Sprintf("%q is not a valid choice.", input.Currency))
	}
	if input.CapitalRaised == nil {
		verr.Add("capital_raised", "This field is required.")
	} else if *input.CapitalRaised < 0 {
		verr.Add("capital_raised", "Must not be negative.")
	}
	if input.MinCommitment == nil {
		verr.Add("min_commitment", "This field is required.")
	} else if *input.MinCommitment < 0 {
		verr.Add("min_commitment", "Must not be negative.")
	}
	if input.LeadershipCommitment == nil {
		verr.Add("leadership_commitment", "This field is required.")
	} else if *input.LeadershipCommitment < 0 {
		verr.Add("leadership_commitment", "Must not be negative.")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}
