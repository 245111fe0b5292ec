package api

import (
	"context"
	"errors"
	"net/url"

	"github.com/ahmetkoprulu/rtrp/arcade/models"
)

var ErrNotApproved = errors.New("provider not approved")

type ProviderService struct {
	parent   *ApiService
	client   *ApiClient
	gameName string
}

func NewProviderService(parent *ApiService, endpoint string) *ProviderService {
	return &ProviderService{
		parent:   parent,
		client:   parent.getClient("provider-service", endpoint),
		gameName: parent.config.GameName,
	}
}

// CheckApproval fetches the approval of the configured game. The result is
// returned alongside ErrNotApproved when approved is false.
func (s *ProviderService) CheckApproval(ctx context.Context) (*models.ApprovalResult, error) {
	var result models.ApprovalResult

	err := s.parent.AuthService.WithSession(ctx, func(token string) error {
		return s.client.Get(ctx, "/"+url.PathEscape(s.gameName), &result, WithBearer(token))
	})
	if err != nil {
		return nil, err
	}

	if !result.Approved {
		return &result, ErrNotApproved
	}

	return &result, nil
}
