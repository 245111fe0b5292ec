package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetkoprulu/rtrp/arcade/models"
)

var ErrIntentRejected = errors.New("expense intent rejected")

type ExpenseService struct {
	parent *ApiService
	client *ApiClient
}

func NewExpenseService(parent *ApiService, endpoint string) *ExpenseService {
	return &ExpenseService{
		parent: parent,
		client: parent.getClient("expense-service", endpoint),
	}
}

func (s *ExpenseService) CreateIntent(ctx context.Context, request models.IntentRequest) (*models.ExpenseIntent, error) {
	var intent models.ExpenseIntent

	err := s.parent.AuthService.WithSession(ctx, func(token string) error {
		return s.client.Post(ctx, "/intent.create", request, &intent, WithBearer(token))
	})
	if err != nil {
		return nil, err
	}

	if !intent.Success || intent.ApprovalLink == "" {
		msg := intent.Message
		if msg == "" {
			msg = "Failed to create expense intent"
		}
		return nil, fmt.Errorf("%w: %s", ErrIntentRejected, msg)
	}

	return &intent, nil
}
