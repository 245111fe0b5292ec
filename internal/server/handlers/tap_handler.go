package handlers

import (
	"github.com/ahmetkoprulu/rtrp/arcade/internal/services"
	"github.com/gin-gonic/gin"
)

type TapHandler struct {
	tap *services.TapService
}

func NewTapHandler(tap *services.TapService) *TapHandler {
	return &TapHandler{tap: tap}
}

func (h *TapHandler) RegisterRoutes(router *gin.RouterGroup) {
	tap := router.Group("/tap")
	{
		tap.GET("", h.State)
		tap.POST("/start", h.Start)
		tap.POST("/tap", h.Tap)
		tap.POST("/claim", h.Claim)
		tap.POST("/reset", h.Reset)
	}
}

func (h *TapHandler) State(c *gin.Context) {
	Ok(c, h.tap.State())
}

func (h *TapHandler) Start(c *gin.Context) {
	view, err := h.tap.Start(c.Request.Context())
	respond(c, view, err)
}

func (h *TapHandler) Tap(c *gin.Context) {
	view, err := h.tap.Tap()
	respond(c, view, err)
}

func (h *TapHandler) Claim(c *gin.Context) {
	view, err := h.tap.Claim(c.Request.Context())
	respond(c, view, err)
}

func (h *TapHandler) Reset(c *gin.Context) {
	view, err := h.tap.Reset()
	respond(c, view, err)
}

func respond(c *gin.Context, view any, err error) {
	if err != nil {
		Fail(c, err, view)
		return
	}
	Ok(c, view)
}
