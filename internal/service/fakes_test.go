package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/leva-app/leva-backend/internal/repository"
)

// In-memory fakes backing the service tests.

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*repository.User
	tokens map[string]*repository.RefreshToken
	nextID int

	// when set, the matching lookup fails with this error
	findByEmailErr      error
	findRefreshTokenErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[string]*repository.User),
		tokens: make(map[string]*repository.RefreshToken),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *repository.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findByEmailErr != nil {
		return nil, r.findByEmailErr
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByConfirmationToken(ctx context.Context, token string) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.EmailConfirmationToken != nil && *u.EmailConfirmationToken == token {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByResetKey(ctx context.Context, resetKey string) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetKey != nil && *u.ResetKey == resetKey {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *repository.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, userID, hashedPassword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.Password = hashedPassword
	}
	return nil
}

func (r *fakeUserRepo) Activate(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.IsActive = true
		u.EmailConfirmationToken = nil
	}
	return nil
}

func (r *fakeUserRepo) SetResetKey(ctx context.Context, userID string, resetKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.ResetKey = resetKey
	}
	return nil
}

func (r *fakeUserRepo) SaveRefreshToken(ctx context.Context, token *repository.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	token.ID = fmt.Sprintf("rt-%d", r.nextID)
	copied := *token
	r.tokens[token.Token] = &copied
	return nil
}

func (r *fakeUserRepo) FindRefreshToken(ctx context.Context, token string) (*repository.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findRefreshTokenErr != nil {
		return nil, r.findRefreshTokenErr
	}
	if rt, ok := r.tokens[token]; ok {
		copied := *rt
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) DeleteRefreshToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *fakeUserRepo) DeleteUserRefreshTokens(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, rt := range r.tokens {
		if rt.UserID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}

type fakeSyndicateRepo struct {
	mu         sync.Mutex
	syndicates map[string]*repository.Syndicate
	inv        *fakeInvitationRepo
	nextID     int
}

func newFakeSyndicateRepo(inv *fakeInvitationRepo) *fakeSyndicateRepo {
	return &fakeSyndicateRepo{
		syndicates: make(map[string]*repository.Syndicate),
		inv:        inv,
	}
}

func (r *fakeSyndicateRepo) CreateWithInvitations(ctx context.Context, syndicate *repository.Syndicate, invitations []*repository.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	syndicate.ID = fmt.Sprintf("syn-%d", r.nextID)
	copied := *syndicate
	r.syndicates[syndicate.ID] = &copied
	for _, inv := range invitations {
		inv.SyndicateID = syndicate.ID
		if err := r.inv.Create(ctx, inv); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeSyndicateRepo) FindByID(ctx context.Context, id string) (*repository.Syndicate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.syndicates[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeSyndicateRepo) FindByUserID(ctx context.Context, userID string) ([]*repository.Syndicate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Syndicate
	for _, s := range r.syndicates {
		if s.UserID == userID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSyndicateRepo) Update(ctx context.Context, syndicate *repository.Syndicate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *syndicate
	r.syndicates[syndicate.ID] = &copied
	return nil
}

type fakeInvitationRepo struct {
	mu          sync.Mutex
	invitations map[string]*repository.Invitation // keyed by token
	nextID      int
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{invitations: make(map[string]*repository.Invitation)}
}

func (r *fakeInvitationRepo) Create(ctx context.Context, invitation *repository.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.invitations[invitation.Token]; exists {
		return fmt.Errorf("duplicate token %s", invitation.Token)
	}
	r.nextID++
	invitation.ID = fmt.Sprintf("inv-%d", r.nextID)
	copied := *invitation
	r.invitations[invitation.Token] = &copied
	return nil
}

func (r *fakeInvitationRepo) FindBySyndicateID(ctx context.Context, syndicateID string) ([]*repository.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Invitation
	for _, inv := range r.invitations {
		if inv.SyndicateID == syndicateID {
			copied := *inv
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeInvitationRepo) RedeemByToken(ctx context.Context, token string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[token]
	if !ok || time.Now().After(inv.ExpiresAt) {
		return "", false, nil
	}
	delete(r.invitations, token)
	return inv.SyndicateID, true, nil
}

func (r *fakeInvitationRepo) DeleteExpired(ctx context.Context) (int, error) {
	return 0, nil
}

type fakeMemberRepo struct {
	mu      sync.Mutex
	members []*repository.SyndicateMember
	nextID  int
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{}
}

func (r *fakeMemberRepo) Create(ctx context.Context, member *repository.SyndicateMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.SyndicateID == member.SyndicateID && m.UserID == member.UserID {
			member.ID = m.ID
			return nil
		}
	}
	r.nextID++
	member.ID = fmt.Sprintf("mem-%d", r.nextID)
	copied := *member
	r.members = append(r.members, &copied)
	return nil
}

func (r *fakeMemberRepo) FindBySyndicateID(ctx context.Context, syndicateID string) ([]*repository.SyndicateMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.SyndicateMember
	for _, m := range r.members {
		if m.SyndicateID == syndicateID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) FindByUserID(ctx context.Context, userID string) ([]*repository.SyndicateMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.SyndicateMember
	for _, m := range r.members {
		if m.UserID == userID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) IsMember(ctx context.Context, syndicateID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.SyndicateID == syndicateID && m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

type sentMail struct {
	kind    string
	to      string
	subject string
	token   string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	// signalled on every send so tests can wait for fire-and-forget dispatch
	notify chan struct{}
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{notify: make(chan struct{}, 16)}
}

func (m *fakeMailer) record(mail sentMail) {
	m.mu.Lock()
	m.sent = append(m.sent, mail)
	m.mu.Unlock()
	m.notify <- struct{}{}
}

func (m *fakeMailer) SendAccountConfirmation(to, name, token string) error {
	m.record(sentMail{kind: "confirm_account", to: to, token: token})
	return nil
}

func (m *fakeMailer) SendPasswordReset(to, name, resetKey string) error {
	m.record(sentMail{kind: "reset_password", to: to, token: resetKey})
	return nil
}

func (m *fakeMailer) SendSyndicateInvitation(syndicateName, to, invitedBy, token string) error {
	m.record(sentMail{kind: "invitation", to: to, subject: syndicateName, token: token})
	return nil
}

func (m *fakeMailer) sentMails() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMail, len(m.sent))
	copy(out, m.sent)
	return out
}
