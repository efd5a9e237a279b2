package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leva-app/leva-backend/internal/config"
	"github.com/leva-app/leva-backend/internal/repository"
	"github.com/leva-app/leva-backend/internal/token"
)

func int64Ptr(v int64) *int64 { return &v }
func strPtr(s string) *string { return &s }

type syndicateFixture struct {
	svc     SyndicateService
	users   *fakeUserRepo
	synds   *fakeSyndicateRepo
	invs    *fakeInvitationRepo
	members *fakeMemberRepo
	mailer  *fakeMailer
	owner   *repository.User
}

func newSyndicateFixture(t *testing.T) *syndicateFixture {
	t.Helper()

	users := newFakeUserRepo()
	invs := newFakeInvitationRepo()
	synds := newFakeSyndicateRepo(invs)
	members := newFakeMemberRepo()
	mailer := newFakeMailer()

	owner := &repository.User{
		Email:     "owner@leva.app",
		Password:  "hashed",
		FirstName: strPtr("Aram"),
		LastName:  strPtr("Petrosyan"),
		IsActive:  true,
	}
	if err := users.Create(context.Background(), owner); err != nil {
		t.Fatalf("seed owner: %v", err)
	}

	cfg := &config.Config{InvitationTTL: 30}
	svc := NewSyndicateService(cfg, synds, invs, members, users, token.NewGenerator(), mailer, nil)

	return &syndicateFixture{
		svc:     svc,
		users:   users,
		synds:   synds,
		invs:    invs,
		members: members,
		mailer:  mailer,
		owner:   owner,
	}
}

func validCreateInput() CreateSyndicateInput {
	return CreateSyndicateInput{
		Name:                 "Seed Fund",
		Description:          "Early-stage biotech syndicate",
		PersonalNote:         "Friends first",
		Focus:                "seed",
		Industry:             "biotech",
		Privacy:              "public",
		Horizon:              "3year",
		Currency:             "usd",
		CapitalRaised:        int64Ptr(100000),
		MinCommitment:        int64Ptr(1000),
		LeadershipCommitment: int64Ptr(5000),
	}
}

func TestCreateSyndicate(t *testing.T) {
	f := newSyndicateFixture(t)

	input := validCreateInput()
	input.MembersToInvite = []string{"a@x.com", "b@x.com"}

	syndicate, err := f.svc.Create(context.Background(), f.owner.ID, input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if syndicate.UserID != f.owner.ID {
		t.Errorf("expected owner %s, got %s", f.owner.ID, syndicate.UserID)
	}
	if syndicate.Owner == nil || syndicate.Owner.Email != "owner@leva.app" {
		t.Errorf("expected owner profile embedded in result")
	}
	if syndicate.Focus != "seed" || syndicate.Currency != "usd" || syndicate.CapitalRaised != 100000 {
		t.Errorf("fields not persisted as validated: %+v", syndicate)
	}

	invitations, _ := f.invs.FindBySyndicateID(context.Background(), syndicate.ID)
	if len(invitations) != 2 {
		t.Fatalf("expected 2 invitations, got %d", len(invitations))
	}
	if invitations[0].Token == invitations[1].Token {
		t.Errorf("invitation tokens must be unique")
	}
	for _, inv := range invitations {
		if inv.SyndicateID != syndicate.ID {
			t.Errorf("invitation linked to %s, want %s", inv.SyndicateID, syndicate.ID)
		}
	}

	// Invitation emails are dispatched asynchronously.
	for i := 0; i < 2; i++ {
		select {
		case <-f.mailer.notify:
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for invitation email %d", i+1)
		}
	}
	sent := f.mailer.sentMails()
	if len(sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(sent))
	}
	for _, mail := range sent {
		if mail.kind != "invitation" || mail.subject != "Seed Fund" {
			t.Errorf("unexpected mail: %+v", mail)
		}
	}
}

func TestCreateSyndicateReportsAllInvalidFields(t *testing.T) {
	f := newSyndicateFixture(t)

	input := validCreateInput()
	input.Name = ""
	input.Focus = "growth"
	input.Currency = "gbp"
	input.CapitalRaised = nil

	_, err := f.svc.Create(context.Background(), f.owner.ID, input)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"name", "focus", "currency", "capital_raised"} {
		if len(verr.Fields[field]) == 0 {
			t.Errorf("expected error for field %q, got %v", field, verr.Fields)
		}
	}
	if len(verr.Fields) != 4 {
		t.Errorf("expected exactly 4 offending fields, got %v", verr.Fields)
	}
}

func TestCreateSyndicateRejectsBadInviteeAtomically(t *testing.T) {
	f := newSyndicateFixture(t)

	input := validCreateInput()
	input.MembersToInvite = []string{"good@x.com", "not-an-email"}

	_, err := f.svc.Create(context.Background(), f.owner.ID, input)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields["members_to_invite"]) == 0 {
		t.Errorf("expected members_to_invite error, got %v", verr.Fields)
	}

	// Nothing persisted: no syndicate, no partial invitations.
	syndicates, _ := f.synds.FindByUserID(context.Background(), f.owner.ID)
	if len(syndicates) != 0 {
		t.Errorf("expected no syndicates persisted, got %d", len(syndicates))
	}
}

func TestConfirmInvite(t *testing.T) {
	f := newSyndicateFixture(t)

	input := validCreateInput()
	input.MembersToInvite = []string{"joiner@x.com"}
	syndicate, err := f.svc.Create(context.Background(), f.owner.ID, input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	joiner := &repository.User{Email: "joiner@x.com", Password: "hashed", IsActive: true}
	f.users.Create(context.Background(), joiner)

	invitations, _ := f.invs.FindBySyndicateID(context.Background(), syndicate.ID)
	tok := invitations[0].Token

	member, err := f.svc.ConfirmInvite(context.Background(), joiner.ID, tok)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if member.SyndicateID != syndicate.ID || member.UserID != joiner.ID {
		t.Errorf("unexpected membership: %+v", member)
	}

	// Token is consumed on redemption.
	remaining, _ := f.invs.FindBySyndicateID(context.Background(), syndicate.ID)
	if len(remaining) != 0 {
		t.Errorf("expected invitation removed, %d remain", len(remaining))
	}

	// Second redemption of the same token fails and creates nothing.
	if _, err := f.svc.ConfirmInvite(context.Background(), joiner.ID, tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken on reuse, got %v", err)
	}
	members, _ := f.members.FindBySyndicateID(context.Background(), syndicate.ID)
	if len(members) != 1 {
		t.Errorf("expected 1 membership, got %d", len(members))
	}
}

func TestConfirmInviteUnknownToken(t *testing.T) {
	f := newSyndicateFixture(t)

	_, err := f.svc.ConfirmInvite(context.Background(), f.owner.ID, "deadbeef")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	members, _ := f.members.FindByUserID(context.Background(), f.owner.ID)
	if len(members) != 0 {
		t.Errorf("expected no memberships, got %d", len(members))
	}
}

func TestConfirmInviteExpiredToken(t *testing.T) {
	f := newSyndicateFixture(t)

	// A service whose invitations are born already expired.
	expired := NewSyndicateService(&config.Config{InvitationTTL: -1}, f.synds, f.invs, f.members, f.users, token.NewGenerator(), f.mailer, nil)

	input := validCreateInput()
	input.MembersToInvite = []string{"joiner@x.com"}
	syndicate, err := expired.Create(context.Background(), f.owner.ID, input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	joiner := &repository.User{Email: "joiner@x.com", Password: "hashed", IsActive: true}
	f.users.Create(context.Background(), joiner)

	invitations, _ := f.invs.FindBySyndicateID(context.Background(), syndicate.ID)
	tok := invitations[0].Token

	// An expired token reads exactly like an unknown one.
	if _, err := f.svc.ConfirmInvite(context.Background(), joiner.ID, tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
	members, _ := f.members.FindBySyndicateID(context.Background(), syndicate.ID)
	if len(members) != 0 {
		t.Errorf("expected no memberships, got %d", len(members))
	}
}

func TestConfirmInviteConcurrent(t *testing.T) {
	f := newSyndicateFixture(t)

	input := validCreateInput()
	input.MembersToInvite = []string{"joiner@x.com"}
	syndicate, err := f.svc.Create(context.Background(), f.owner.ID, input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	invitations, _ := f.invs.FindBySyndicateID(context.Background(), syndicate.ID)
	tok := invitations[0].Token

	userA := &repository.User{Email: "a@x.com", Password: "hashed", IsActive: true}
	userB := &repository.User{Email: "b@x.com", Password: "hashed", IsActive: true}
	f.users.Create(context.Background(), userA)
	f.users.Create(context.Background(), userB)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, uid := range []string{userA.ID, userB.ID} {
		wg.Add(1)
		go func(i int, uid string) {
			defer wg.Done()
			_, results[i] = f.svc.ConfirmInvite(context.Background(), uid, tok)
		}(i, uid)
	}
	wg.Wait()

	var successes, misses int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrInvalidToken):
			misses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || misses != 1 {
		t.Fatalf("expected exactly one winner, got %d successes and %d misses", successes, misses)
	}

	members, _ := f.members.FindBySyndicateID(context.Background(), syndicate.ID)
	if len(members) != 1 {
		t.Errorf("expected 1 membership, got %d", len(members))
	}
}

func TestUpdateSyndicate(t *testing.T) {
	f := newSyndicateFixture(t)

	syndicate, err := f.svc.Create(context.Background(), f.owner.ID, validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := f.svc.Update(context.Background(), f.owner.ID, syndicate.ID, UpdateSyndicateInput{
		Name:     strPtr("Series A Club"),
		Currency: strPtr("eur"),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Series A Club" || updated.Currency != "eur" {
		t.Errorf("update not applied: %+v", updated)
	}
	// Untouched fields survive a partial update.
	if updated.Focus != "seed" || updated.CapitalRaised != 100000 {
		t.Errorf("partial update clobbered fields: %+v", updated)
	}
}

func TestUpdateSyndicateValidatesEnums(t *testing.T) {
	f := newSyndicateFixture(t)

	syndicate, err := f.svc.Create(context.Background(), f.owner.ID, validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = f.svc.Update(context.Background(), f.owner.ID, syndicate.ID, UpdateSyndicateInput{
		Privacy: strPtr("secret"),
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields["privacy"]) == 0 {
		t.Errorf("expected privacy error, got %v", verr.Fields)
	}
}

func TestUpdateSyndicateForbiddenForNonOwner(t *testing.T) {
	f := newSyndicateFixture(t)

	syndicate, err := f.svc.Create(context.Background(), f.owner.ID, validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	intruder := &repository.User{Email: "intruder@x.com", Password: "hashed", IsActive: true}
	f.users.Create(context.Background(), intruder)

	_, err = f.svc.Update(context.Background(), intruder.ID, syndicate.ID, UpdateSyndicateInput{
		Name: strPtr("Hijacked"),
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestListMembersVisibility(t *testing.T) {
	f := newSyndicateFixture(t)

	input := validCreateInput()
	input.MembersToInvite = []string{"joiner@x.com"}
	syndicate, err := f.svc.Create(context.Background(), f.owner.ID, input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	joiner := &repository.User{Email: "joiner@x.com", Password: "hashed", IsActive: true}
	f.users.Create(context.Background(), joiner)

	invitations, _ := f.invs.FindBySyndicateID(context.Background(), syndicate.ID)
	if _, err := f.svc.ConfirmInvite(context.Background(), joiner.ID, invitations[0].Token); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	if _, err := f.svc.ListMembers(context.Background(), f.owner.ID, syndicate.ID); err != nil {
		t.Errorf("owner denied the roster: %v", err)
	}

	members, err := f.svc.ListMembers(context.Background(), joiner.ID, syndicate.ID)
	if err != nil {
		t.Errorf("member denied the roster: %v", err)
	}
	if len(members) != 1 {
		t.Errorf("expected 1 member, got %d", len(members))
	}

	outsider := &repository.User{Email: "outsider@x.com", Password: "hashed", IsActive: true}
	f.users.Create(context.Background(), outsider)
	if _, err := f.svc.ListMembers(context.Background(), outsider.ID, syndicate.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for an outsider, got %v", err)
	}
}

func TestListForUser(t *testing.T) {
	f := newSyndicateFixture(t)

	if _, err := f.svc.Create(context.Background(), f.owner.ID, validCreateInput()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	syndicates, err := f.svc.ListForUser(context.Background(), f.owner.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(syndicates) != 1 {
		t.Fatalf("expected 1 syndicate, got %d", len(syndicates))
	}
}
