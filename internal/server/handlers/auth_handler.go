package handlers

import (
	"github.com/ahmetkoprulu/rtrp/arcade/internal/services"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
	"github.com/gin-gonic/gin"
)

// AuthHandler covers the end user's email login and wallet lookup.
type AuthHandler struct {
	identity *services.IdentityService
}

func NewAuthHandler(identity *services.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/request-code", h.RequestCode)
		auth.POST("/verify", h.Verify)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)
	}

	wallet := router.Group("/wallet")
	{
		wallet.POST("/create", h.CreateWallet)
		wallet.POST("/resolve", h.ResolveWallet)
	}
}

func (h *AuthHandler) RequestCode(c *gin.Context) {
	req := BindModel[models.EmailLoginRequest](c)
	if req == nil {
		return
	}

	if err := h.identity.RequestCode(c.Request.Context(), req.Email); err != nil {
		Fail(c, err)
		return
	}

	Ok(c, "Verification code sent")
}

func (h *AuthHandler) Verify(c *gin.Context) {
	req := BindModel[models.EmailVerifyRequest](c)
	if req == nil {
		return
	}

	identity, err := h.identity.VerifyCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		Fail(c, err)
		return
	}

	Ok(c, identity)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.identity.Logout(); err != nil {
		Fail(c, err)
		return
	}

	Ok(c, "Logged out")
}

func (h *AuthHandler) Me(c *gin.Context) {
	identity, err := h.identity.Identity()
	if err != nil {
		Fail(c, err)
		return
	}

	Ok(c, identity)
}

func (h *AuthHandler) CreateWallet(c *gin.Context) {
	wallet, err := h.identity.CreateWallet(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}

	Ok(c, wallet)
}

func (h *AuthHandler) ResolveWallet(c *gin.Context) {
	req := BindModel[models.WalletUserRequest](c)
	if req == nil {
		return
	}

	identity, err := h.identity.ResolveWallet(c.Request.Context(), req.WalletAddress)
	if err != nil {
		Fail(c, err)
		return
	}

	Ok(c, identity)
}
