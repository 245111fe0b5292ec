package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetkoprulu/rtrp/arcade/models"
)

// emailOnlyUserID is the placeholder user id of an email-only login.
const emailOnlyUserID = "EMAIL_ONLY"

var ErrVerificationFailed = errors.New("email verification failed")

type ProfileService struct {
	parent *ApiService
	client *ApiClient
}

func NewProfileService(parent *ApiService, endpoint string) *ProfileService {
	return &ProfileService{
		parent: parent,
		client: parent.getClient("profile-service", endpoint),
	}
}

func (s *ProfileService) RequestEmailCode(ctx context.Context, email string) error {
	var response models.ApiResponse[any]

	request := models.EmailCodeRequest{UserID: emailOnlyUserID, Email: email}
	if err := s.client.Post(ctx, "/request-email", request, &response); err != nil {
		return err
	}

	if !response.Success {
		msg := response.Message
		if msg == "" {
			msg = "Failed to send code"
		}
		return fmt.Errorf("%w: %s", ErrVerificationFailed, msg)
	}

	return nil
}

func (s *ProfileService) VerifyEmail(ctx context.Context, email, code string) (*models.UserIdentity, error) {
	var response models.EmailVerifyResponse

	request := models.EmailVerifyRequest{Email: email, Code: code}
	if err := s.client.Post(ctx, "/verify-email-only", request, &response); err != nil {
		return nil, err
	}

	if !response.Success || response.UserID == "" {
		msg := response.Message
		if msg == "" {
			msg = "Verification failed"
		}
		return nil, fmt.Errorf("%w: %s", ErrVerificationFailed, msg)
	}

	return &models.UserIdentity{
		UserID:    response.UserID,
		UserToken: response.UserToken,
		Email:     email,
	}, nil
}
