package handlers

import (
	"strconv"

	"github.com/ahmetkoprulu/rtrp/arcade/internal/services"
	"github.com/gin-gonic/gin"
)

const maxHistoryLimit = 200

type SettlementHandler struct {
	identity *services.IdentityService
	reporter *services.SettlementReporter
}

func NewSettlementHandler(identity *services.IdentityService, reporter *services.SettlementReporter) *SettlementHandler {
	return &SettlementHandler{identity: identity, reporter: reporter}
}

func (h *SettlementHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/settlements", h.History)
}

// History lists the current user's register-event attempts, newest first.
func (h *SettlementHandler) History(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		BadRequest(c, "limit must be a positive integer")
		return
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	identity, err := h.identity.Identity()
	if err != nil {
		Fail(c, err)
		return
	}

	records, err := h.reporter.History(c.Request.Context(), identity.UserID, limit)
	if err != nil {
		Fail(c, err)
		return
	}

	Ok(c, records)
}
