package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leva-app/leva-backend/internal/models"
	"github.com/leva-app/leva-backend/internal/repository"
	"github.com/leva-app/leva-backend/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth      *AuthHandler
	User      *UserHandler
	Syndicate *SyndicateHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:      &AuthHandler{authService: services.Auth},
		User:      &UserHandler{userService: services.User},
		Syndicate: &SyndicateHandler{syndicateService: services.Syndicate},
	}
}

// ============================================
// Response Mappers
// ============================================

func toUserResponse(u *repository.User) models.UserResponse {
	return models.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		ZipCode:   u.ZipCode,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func toSyndicateResponse(s *repository.Syndicate) models.SyndicateResponse {
	resp := models.SyndicateResponse{
		ID:                   s.ID,
		Name:                 s.Name,
		Description:          s.Description,
		PersonalNote:         s.PersonalNote,
		Focus:                s.Focus,
		Industry:             s.Industry,
		Privacy:              s.Privacy,
		Horizon:              s.Horizon,
		Currency:             s.Currency,
		CapitalRaised:        s.CapitalRaised,
		MinCommitment:        s.MinCommitment,
		LeadershipCommitment: s.LeadershipCommitment,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
	if s.Owner != nil {
		owner := toUserResponse(s.Owner)
		resp.Owner = &owner
	}
	return resp
}

func toMemberResponse(m *repository.SyndicateMember) models.MemberResponse {
	resp := models.MemberResponse{
		ID:          m.ID,
		SyndicateID: m.SyndicateID,
		UserID:      m.UserID,
		JoinedAt:    m.JoinedAt,
	}
	if m.User != nil {
		user := toUserResponse(m.User)
		resp.User = &user
	}
	return resp
}

// ============================================
// Error Translation
// ============================================

// respondError maps service errors onto field-keyed HTTP error bodies.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields})
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusNotFound, gin.H{"errors": gin.H{"token": "Token is invalid"}})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"errors": gin.H{"email": "This email address already exists."}})
	case errors.Is(err, service.ErrAccountInactive):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Your account is inactive."})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
