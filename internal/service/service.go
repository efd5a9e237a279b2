package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/leva-app/leva-backend/internal/config"
	"github.com/leva-app/leva-backend/internal/db"
	"github.com/leva-app/leva-backend/internal/repository"
	"github.com/leva-app/leva-backend/internal/token"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("forbidden")
)

// ValidationError carries every offending field of a request at once so the
// caller can highlight all of them in a single response.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// Mailer is the outbound notification port. Delivery is best-effort and
// fire-and-forget: callers dispatch in a goroutine and never block on it.
type Mailer interface {
	SendAccountConfirmation(to, name, token string) error
	SendPasswordReset(to, name, resetKey string) error
	SendSyndicateInvitation(syndicateName, to, invitedBy, token string) error
}

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth      AuthService
	User      UserService
	Syndicate SyndicateService
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config   *config.Config
	Repos    *repository.Repositories
	TokenGen token.Generator
	Mailer   Mailer
	Cache    *db.RedisDB
}

func NewServices(deps *ServiceDeps) *Services {
	return &Services{
		Auth: NewAuthService(deps.Config, deps.Repos.UserRepo, deps.TokenGen, deps.Mailer),
		User: NewUserService(deps.Repos.UserRepo),
		Syndicate: NewSyndicateService(
			deps.Config,
			deps.Repos.SyndicateRepo,
			deps.Repos.InvitationRepo,
			deps.Repos.MemberRepo,
			deps.Repos.UserRepo,
			deps.TokenGen,
			deps.Mailer,
			deps.Cache,
		),
	}
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
