package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/leva-app/leva-backend/internal/config"
	"github.com/leva-app/leva-backend/internal/repository"
	"github.com/leva-app/leva-backend/internal/token"
	"golang.org/x/crypto/bcrypt"
)

// ============================================
// Auth Service
// ============================================

type RegisterInput struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
	Phone     *string
	ZipCode   *string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*repository.User, error)
	ConfirmAccount(ctx context.Context, confirmationToken string) error
	Login(ctx context.Context, email, password string) (*repository.User, string, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetKey, password, repeatPassword string) error
	ValidateToken(token string) (*jwt.Token, error)
	GetUserIDFromToken(token *jwt.Token) (string, error)
}

type authService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	tokenGen token.Generator
	mailer   Mailer
}

func NewAuthService(cfg *config.Config, userRepo repository.UserRepository, tokenGen token.Generator, mailer Mailer) AuthService {
	return &authService{cfg: cfg, userRepo: userRepo, tokenGen: tokenGen, mailer: mailer}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*repository.User, error) {
	input.Email = normalizeEmail(input.Email)

	existingUser, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	confirmationToken, err := s.tokenGen.Generate(input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate confirmation token: %w", err)
	}

	user := &repository.User{
		Email:                  input.Email,
		Password:               string(hashedPassword),
		FirstName:              input.FirstName,
		LastName:               input.LastName,
		Phone:                  input.Phone,
		ZipCode:                input.ZipCode,
		IsActive:               false,
		EmailConfirmationToken: &confirmationToken,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.mailer != nil {
		go func(email, name, tok string) {
			if err := s.mailer.SendAccountConfirmation(email, name, tok); err != nil {
				log.Printf("[Email] failed to send account confirmation to %s: %v", email, err)
			}
		}(user.Email, displayName(user), confirmationToken)
	}

	return user, nil
}

func (s *authService) ConfirmAccount(ctx context.Context, confirmationToken string) error {
	user, err := s.userRepo.FindByConfirmationToken(ctx, confirmationToken)
	if err != nil {
		return fmt.Errorf("failed to look up confirmation token: %w", err)
	}
	if user == nil {
		return ErrInvalidToken
	}
	return s.userRepo.Activate(ctx, user.ID)
}

func (s *authService) Login(ctx context.Context, email, password string) (*repository.User, string, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	// Checked after the credential so a wrong password on an inactive account
	// still reads as bad credentials.
	if !user.IsActive {
		return nil, "", "", ErrAccountInactive
	}

	accessToken, refreshToken, err := s.generateTokens(ctx, user.ID)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	return user, accessToken, refreshToken, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	rt, err := s.userRepo.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if rt == nil {
		return "", "", ErrInvalidToken
	}

	if time.Now().After(rt.ExpiresAt) {
		if err := s.userRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
			log.Printf("[Auth] failed to delete expired refresh token: %v", err)
		}
		return "", "", ErrInvalidToken
	}

	if err := s.userRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		log.Printf("[Auth] failed to rotate refresh token: %v", err)
	}

	accessToken, newRefreshToken, err := s.generateTokens(ctx, rt.UserID)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	return accessToken, newRefreshToken, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	return s.userRepo.DeleteRefreshToken(ctx, refreshToken)
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !user.IsActive {
		return ErrAccountInactive
	}

	resetKey, err := s.tokenGen.Generate(user.Email)
	if err != nil {
		return fmt.Errorf("failed to generate reset key: %w", err)
	}

	if err := s.userRepo.SetResetKey(ctx, user.ID, &resetKey); err != nil {
		return fmt.Errorf("failed to save reset key: %w", err)
	}

	if s.mailer != nil {
		go func(email, name, key string) {
			if err := s.mailer.SendPasswordReset(email, name, key); err != nil {
				log.Printf("[Email] failed to send password reset to %s: %v", email, err)
			}
		}(user.Email, displayName(user), resetKey)
	}

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, resetKey, password, repeatPassword string) error {
	if verr := validatePassword(password, repeatPassword); verr != nil {
		return verr
	}

	user, err := s.userRepo.FindByResetKey(ctx, resetKey)
	if err != nil {
		return fmt.Errorf("failed to look up reset key: %w", err)
	}
	if user == nil {
		return ErrInvalidToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	// The key is single-use: clear it so it cannot be redeemed again.
	return s.userRepo.SetResetKey(ctx, user.ID, nil)
}

func (s *authService) ValidateToken(tokenString string) (*jwt.Token, error) {
	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	return tok, nil
}

func (s *authService) GetUserIDFromToken(tok *jwt.Token) (string, error) {
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	userID, ok := claims["sub"].(string)
	if !ok {
		return "", ErrInvalidToken
	}
	return userID, nil
}

func (s *authService) generateTokens(ctx context.Context, userID string) (string, string, error) {
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour * time.Duration(s.cfg.JWTExpiry)).Unix(),
		"iat": time.Now().Unix(),
	})

	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", err
	}

	refreshTokenString := uuid.New().String()
	refreshTokenExpiry := time.Now().Add(time.Hour * 24 * time.Duration(s.cfg.RefreshExpiry))

	rt := &repository.RefreshToken{
		Token:     refreshTokenString,
		UserID:    userID,
		ExpiresAt: refreshTokenExpiry,
	}

	if err := s.userRepo.SaveRefreshToken(ctx, rt); err != nil {
		return "", "", err
	}

	return accessTokenString, refreshTokenString, nil
}

func validatePassword(password, repeatPassword string) *ValidationError {
	verr := NewValidationError()
	if len(password) < 8 {
		verr.Add("password", "Password must be at least 8 characters.")
	}
	if password != repeatPassword {
		verr.Add("repeat_password", "Passwords do not match.")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

func displayName(u *repository.User) string {
	switch {
	case u.FirstName != nil && u.LastName != nil:
		return *u.FirstName + " " + *u.LastName
	case u.FirstName != nil:
		return *u.FirstName
	default:
		return ""
	}
}
