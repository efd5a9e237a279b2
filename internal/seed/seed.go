// internal/seed/seed.go
package seed

import (
	"context"
	"log"
	"time"

	"github.com/leva-app/leva-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

func SeedData(repos *repository.Repositories) {
	ctx := context.Background()

	// Skip if the demo lead already exists
	if existing, _ := repos.UserRepo.FindByEmail(ctx, "anna@leva.app"); existing != nil {
		log.Println("[Seed] Data already exists, skipping")
		return
	}

	log.Println("[Seed] Creating development data...")

	password, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	anna := &repository.User{
		Email:     "anna@leva.app",
		Password:  string(password),
		FirstName: stringPtr("Anna"),
		LastName:  stringPtr("Harutyunyan"),
		IsActive:  true,
	}
	repos.UserRepo.Create(ctx, anna)

	davit := &repository.User{
		Email:     "davit@leva.app",
		Password:  string(password),
		FirstName: stringPtr("Davit"),
		LastName:  stringPtr("Sargsyan"),
		IsActive:  true,
	}
	repos.UserRepo.Create(ctx, davit)

	pendingToken := "seed-invitation-token"
	syndicate := &repository.Syndicate{
		UserID:               anna.ID,
		Name:                 "Seed Fund",
		Description:          "Early-stage biotech syndicate",
		PersonalNote:         "Friends and colleagues only for now",
		Focus:                "seed",
		Industry:             "biotech",
		Privacy:              "public",
		Horizon:              "3year",
		Currency:             "usd",
		CapitalRaised:        100000,
		MinCommitment:        1000,
		LeadershipCommitment: 5000,
	}
	repos.SyndicateRepo.CreateWithInvitations(ctx, syndicate, []*repository.Invitation{
		{
			Email:     "davit@leva.app",
			Token:     pendingToken,
			ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
		},
	})

	log.Printf("[Seed] Created users anna@leva.app / davit@leva.app (password123), syndicate %q with one pending invitation", syndicate.Name)
}

func stringPtr(s string) *string {
	return &s
}
