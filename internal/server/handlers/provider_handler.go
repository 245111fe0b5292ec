package handlers

import (
	"github.com/ahmetkoprulu/rtrp/arcade/internal/services"
	"github.com/gin-gonic/gin"
)

type ProviderHandler struct {
	session *services.ProviderSession
	entry   *services.EntryService
}

func NewProviderHandler(session *services.ProviderSession, entry *services.EntryService) *ProviderHandler {
	return &ProviderHandler{session: session, entry: entry}
}

func (h *ProviderHandler) RegisterRoutes(router *gin.RouterGroup) {
	provider := router.Group("/provider")
	{
		provider.POST("/login", h.Login)
		provider.GET("/status", h.Status)
		provider.GET("/approval", h.Approval)
	}
}

func (h *ProviderHandler) Login(c *gin.Context) {
	credential, err := h.session.Login(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}

	Ok(c, credential)
}

func (h *ProviderHandler) Status(c *gin.Context) {
	Ok(c, h.session.Status())
}

// Approval answers the gate even when it is closed: the body carries the
// approval result and the status is 403.
func (h *ProviderHandler) Approval(c *gin.Context) {
	approval, err := h.entry.CheckApproval(c.Request.Context())
	if err != nil && approval != nil {
		Fail(c, err, approval)
		return
	}
	if err != nil {
		Fail(c, err)
		return
	}

	Ok(c, approval)
}
