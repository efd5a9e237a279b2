package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leva-app/leva-backend/internal/api/middleware"
	"github.com/leva-app/leva-backend/internal/models"
	"github.com/leva-app/leva-backend/internal/service"
)

// ============================================
// Syndicate Handler
// ============================================

type SyndicateHandler struct {
	syndicateService service.SyndicateService
}

func (h *SyndicateHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateSyndicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	syndicate, err := h.syndicateService.Create(c.Request.Context(), userID, service.CreateSyndicateInput{
		Name:                 req.Name,
		Description:          req.Description,
		PersonalNote:         req.PersonalNote,
		Focus:                req.Focus,
		Industry:             req.Industry,
		Privacy:              req.Privacy,
		Horizon:              req.Horizon,
		Currency:             req.Currency,
		CapitalRaised:        req.CapitalRaised,
		MinCommitment:        req.MinCommitment,
		LeadershipCommitment: req.LeadershipCommitment,
		MembersToInvite:      req.MembersToInvite,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toSyndicateResponse(syndicate))
}

func (h *SyndicateHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.UpdateSyndicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	syndicate, err := h.syndicateService.Update(c.Request.Context(), userID, c.Param("id"), service.UpdateSyndicateInput{
		Name:                 req.Name,
		Description:          req.Description,
		PersonalNote:         req.PersonalNote,
		Focus:                req.Focus,
		Industry:             req.Industry,
		Privacy:              req.Privacy,
		Horizon:              req.Horizon,
		Currency:             req.Currency,
		CapitalRaised:        req.CapitalRaised,
		MinCommitment:        req.MinCommitment,
		LeadershipCommitment: req.LeadershipCommitment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSyndicateResponse(syndicate))
}

func (h *SyndicateHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	syndicates, err := h.syndicateService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list syndicates"})
		return
	}

	response := make([]models.SyndicateResponse, len(syndicates))
	for i, s := range syndicates {
		response[i] = toSyndicateResponse(s)
	}

	c.JSON(http.StatusOK, response)
}

func (h *SyndicateHandler) ListMembers(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	members, err := h.syndicateService.ListMembers(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]models.MemberResponse, len(members))
	for i, m := range members {
		response[i] = toMemberResponse(m)
	}

	c.JSON(http.StatusOK, response)
}

func (h *SyndicateHandler) ListMyMemberships(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	memberships, err := h.syndicateService.ListMembershipsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list memberships"})
		return
	}

	response := make([]models.MemberResponse, len(memberships))
	for i, m := range memberships {
		response[i] = toMemberResponse(m)
	}

	c.JSON(http.StatusOK, response)
}

func (h *SyndicateHandler) ConfirmInvite(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.ConfirmInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.syndicateService.ConfirmInvite(c.Request.Context(), userID, req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMemberResponse(member))
}
