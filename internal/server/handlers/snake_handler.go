package handlers

import (
	"github.com/ahmetkoprulu/rtrp/arcade/internal/services"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
	"github.com/gin-gonic/gin"
)

type SnakeHandler struct {
	snake *services.SnakeService
}

func NewSnakeHandler(snake *services.SnakeService) *SnakeHandler {
	return &SnakeHandler{snake: snake}
}

func (h *SnakeHandler) RegisterRoutes(router *gin.RouterGroup) {
	snake := router.Group("/snake")
	{
		snake.GET("", h.State)
		snake.POST("/start", h.Start)
		snake.POST("/direction", h.Direction)
		snake.POST("/reset", h.Reset)
	}
}

func (h *SnakeHandler) State(c *gin.Context) {
	Ok(c, h.snake.State())
}

func (h *SnakeHandler) Start(c *gin.Context) {
	view, err := h.snake.Start(c.Request.Context())
	respond(c, view, err)
}

func (h *SnakeHandler) Direction(c *gin.Context) {
	req := BindModel[models.DirectionRequest](c)
	if req == nil {
		return
	}

	view, err := h.snake.SetDirection(req.Direction)
	respond(c, view, err)
}

func (h *SnakeHandler) Reset(c *gin.Context) {
	Ok(c, h.snake.Reset())
}
