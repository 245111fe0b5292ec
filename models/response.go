package models

type ApiResponse[T any] struct {
	Success bool   `json:"success"`
	Status  int    `json:"status,omitempty"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorBody covers the error shapes the backend answers with.
type ErrorBody struct {
	Success *bool  `json:"success,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (e ErrorBody) Text() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Message != "":
		return e.Message
	default:
		return e.Error
	}
}
