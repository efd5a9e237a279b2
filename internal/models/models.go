package models

import "time"

// ============================================
// Auth DTOs
// ============================================

type RegisterRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	ZipCode   *string `json:"zip_code,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type ConfirmAccountRequest struct {
	Token string `json:"token" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	ResetKey       string `json:"reset_key" binding:"required"`
	Password       string `json:"password" binding:"required"`
	RepeatPassword string `json:"repeat_password" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword    string `json:"old_password" binding:"required"`
	Password       string `json:"password" binding:"required"`
	RepeatPassword string `json:"repeat_password" binding:"required"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// ============================================
// User DTOs
// ============================================

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName *string   `json:"first_name,omitempty"`
	LastName  *string   `json:"last_name,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	ZipCode   *string   `json:"zip_code,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"createdAt"`
}

type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	ZipCode   *string `json:"zip_code,omitempty"`
}

// ============================================
// Syndicate DTOs
// ============================================

// CreateSyndicateRequest carries no binding rules on purpose: the service
// validates every field itself and reports all failures in one field-keyed
// body, which gin's binder would short-circuit on the first missing field.
type CreateSyndicateRequest struct {
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	PersonalNote         string   `json:"personal_note"`
	Focus                string   `json:"focus"`
	Industry             string   `json:"industry"`
	Privacy              string   `json:"privacy"`
	Horizon              string   `json:"horizon"`
	Currency             string   `json:"currency"`
	CapitalRaised        *int64   `json:"capital_raised"`
	MinCommitment        *int64   `json:"min_commitment"`
	LeadershipCommitment *int64   `json:"leadership_commitment"`
	MembersToInvite      []string `json:"members_to_invite"`
}

type UpdateSyndicateRequest struct {
	Name                 *string `json:"name,omitempty"`
	Description          *string `json:"description,omitempty"`
	PersonalNote         *string `json:"personal_note,omitempty"`
	Focus                *string `json:"focus,omitempty"`
	Industry             *string `json:"industry,omitempty"`
	Privacy              *string `json:"privacy,omitempty"`
	Horizon              *string `json:"horizon,omitempty"`
	Currency             *string `json:"currency,omitempty"`
	CapitalRaised        *int64  `json:"capital_raised,omitempty"`
	MinCommitment        *int64  `json:"min_commitment,omitempty"`
	LeadershipCommitment *int64  `json:"leadership_commitment,omitempty"`
}

type ConfirmInviteRequest struct {
	Token string `json:"token" binding:"required"`
}

type SyndicateResponse struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"name"`
	Description          string        `json:"description"`
	PersonalNote         string        `json:"personal_note"`
	Focus                string        `json:"focus"`
	Industry             string        `json:"industry"`
	Privacy              string        `json:"privacy"`
	Horizon              string        `json:"horizon"`
	Currency             string        `json:"currency"`
	CapitalRaised        int64         `json:"capital_raised"`
	MinCommitment        int64         `json:"min_commitment"`
	LeadershipCommitment int64         `json:"leadership_commitment"`
	Owner                *UserResponse `json:"owner,omitempty"`
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`
}

type MemberResponse struct {
	ID          string        `json:"id"`
	SyndicateID string        `json:"syndicateId"`
	UserID      string        `json:"userId"`
	JoinedAt    time.Time     `json:"joinedAt"`
	User        *UserResponse `json:"user,omitempty"`
}
