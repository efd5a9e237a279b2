package service

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/leva-app/leva-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// ============================================
// User Service
// ============================================

type UpdateProfileInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
	ZipCode   *string
}

type UserService interface {
	GetByID(ctx context.Context, id string) (*repository.User, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*repository.User, error)
	ChangePassword(ctx context.Context, userID, oldPassword, password, repeatPassword string) error
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetByID(ctx context.Context, id string) (*repository.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*repository.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			verr := NewValidationError()
			verr.Add("email", "Enter a valid email address.")
			return nil, verr
		}
		if email != user.Email {
			existing, err := s.userRepo.FindByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("failed to look up email: %w", err)
			}
			if existing != nil {
				return nil, ErrUserExists
			}
		}
		user.Email = email
	}
	if input.FirstName != nil {
		user.FirstName = input.FirstName
	}
	if input.LastName != nil {
		user.LastName = input.LastName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.ZipCode != nil {
		user.ZipCode = input.ZipCode
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID, oldPassword, password, repeatPassword string) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if verr := validatePassword(password, repeatPassword); verr != nil {
		return verr
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, userID, string(hashedPassword))
}
