package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetkoprulu/rtrp/arcade/models"
)

var (
	ErrEventRejected  = errors.New("event registration rejected")
	ErrOutcomeUnknown = errors.New("event outcome unknown")
)

type EventService struct {
	parent *ApiService
	client *ApiClient
}

func NewEventService(parent *ApiService, endpoint string) *EventService {
	return &EventService{
		parent: parent,
		client: parent.getClient("event-service", endpoint),
	}
}

// RegisterEvent sends one POST /register-event. It is never retried beyond the
// single re-login, so delivery is at most once attempted. When the request was
// written but no answer arrived the error wraps ErrOutcomeUnknown: the backend
// may or may not have recorded the event.
func (s *EventService) RegisterEvent(ctx context.Context, event models.SettlementEvent) error {
	var response models.ApiResponse[any]

	err := s.parent.AuthService.WithSession(ctx, func(token string) error {
		return s.client.Post(ctx, "", event, &response, WithBearer(token))
	})
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) && te.Written {
			return fmt.Errorf("%w: %w", ErrOutcomeUnknown, err)
		}
		return err
	}

	if !response.Success {
		msg := response.Message
		if msg == "" {
			msg = "Failed to register event"
		}
		return fmt.Errorf("%w: %s", ErrEventRejected, msg)
	}

	return nil
}
