package handlers

import (
	"github.com/ahmetkoprulu/rtrp/arcade/internal/metrics"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	variant models.GameVariant
	mode    models.ExpenseMode
	clients func() int
}

type HealthResponse struct {
	Status        string             `json:"status"`
	Variant       models.GameVariant `json:"variant"`
	ExpenseMode   models.ExpenseMode `json:"expense_mode"`
	BridgeClients int                `json:"bridge_clients"`
}

func NewHealthHandler(cfg *models.Config, clients func() int) *HealthHandler {
	return &HealthHandler{variant: cfg.Variant, mode: cfg.ExpenseMode, clients: clients}
}

func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.Check)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func (h *HealthHandler) Check(c *gin.Context) {
	response := HealthResponse{Status: "healthy", Variant: h.variant, ExpenseMode: h.mode}
	if h.clients != nil {
		response.BridgeClients = h.clients()
	}
	Ok(c, response)
}
