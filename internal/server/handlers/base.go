package handlers

import (
	"github.com/ahmetkoprulu/rtrp/arcade/internal/server/middleware"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
	"github.com/gin-gonic/gin"
)

// Data related functions
func BindModel[T any](ctx *gin.Context) *T {
	var model T
	if err := ctx.ShouldBindJSON(&model); err != nil {
		BadRequest(ctx, err.Error())
		return nil
	}

	return &model
}

// Return Types for Controllers
func Ok(ctx *gin.Context, data any) {
	ctx.JSON(200, models.ApiResponse[any]{
		Success: true,
		Status:  200,
		Data:    data,
	})
}

func BadRequest(ctx *gin.Context, message string) {
	ctx.JSON(400, middleware.ErrorResponse{Error: message})
}

// Fail hands err to the error middleware. state, when given, is the game view
// after the failed action.
func Fail(ctx *gin.Context, err error, state ...any) {
	if len(state) > 0 {
		ctx.Set("state", state[0])
	}
	_ = ctx.Error(err)
}
