package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/leva-app/leva-backend/internal/repository"
	"github.com/leva-app/leva-backend/internal/service"
)

type stubSyndicateService struct {
	createInput *service.CreateSyndicateInput
	createErr   error
}

func (s *stubSyndicateService) Create(ctx context.Context, ownerID string, input service.CreateSyndicateInput) (*repository.Syndicate, error) {
	s.createInput = &input
	return nil, s.createErr
}

func (s *stubSyndicateService) Update(ctx context.Context, actorID, syndicateID string, input service.UpdateSyndicateInput) (*repository.Syndicate, error) {
	return nil, service.ErrNotFound
}

func (s *stubSyndicateService) GetByID(ctx context.Context, id string) (*repository.Syndicate, error) {
	return nil, service.ErrNotFound
}

func (s *stubSyndicateService) ListForUser(ctx context.Context, userID string) ([]*repository.Syndicate, error) {
	return nil, nil
}

func (s *stubSyndicateService) ListMembers(ctx context.Context, actorID, syndicateID string) ([]*repository.SyndicateMember, error) {
	return nil, nil
}

func (s *stubSyndicateService) ListMembershipsForUser(ctx context.Context, userID string) ([]*repository.SyndicateMember, error) {
	return nil, nil
}

func (s *stubSyndicateService) ConfirmInvite(ctx context.Context, userID, inviteToken string) (*repository.SyndicateMember, error) {
	return nil, service.ErrInvalidToken
}

func newSyndicateRouter(stub *stubSyndicateService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &SyndicateHandler{syndicateService: stub}
	authed := func(c *gin.Context) { c.Set("userID", "user-1") }
	r.POST("/api/syndicates", authed, h.Create)
	return r
}

func TestCreateReportsAllFieldErrors(t *testing.T) {
	verr := service.NewValidationError()
	verr.Add("name", "This field is required.")
	verr.Add("capital_raised", "This field is required.")
	verr.Add("focus", `"growth" is not a valid choice.`)
	stub := &stubSyndicateService{createErr: verr}
	r := newSyndicateRouter(stub)

	// name and capital_raised are absent; the body must still reach the
	// service so every failure lands in one response.
	body := `{"focus": "growth", "currency": "usd", "description": "d", "personal_note": "p"}`
	req := httptest.NewRequest(http.MethodPost, "/api/syndicates", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if stub.createInput == nil {
		t.Fatal("request with missing fields never reached the service")
	}
	if stub.createInput.Focus != "growth" || stub.createInput.CapitalRaised != nil {
		t.Errorf("unexpected input forwarded: %+v", stub.createInput)
	}

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body %q: %v", w.Body.String(), err)
	}
	for _, field := range []string{"name", "capital_raised", "focus"} {
		if len(resp.Errors[field]) == 0 {
			t.Errorf("expected error for field %q, got %v", field, resp.Errors)
		}
	}
}
