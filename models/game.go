package models

type DirectionRequest struct {
	Direction string `json:"direction" binding:"required"`
}
