package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetkoprulu/rtrp/arcade/models"
)

var ErrWalletRejected = errors.New("wallet request rejected")

type WalletService struct {
	parent *ApiService
	client *ApiClient
}

func NewWalletService(parent *ApiService, endpoint string) *WalletService {
	return &WalletService{
		parent: parent,
		client: parent.getClient("wallet-service", endpoint),
	}
}

func (s *WalletService) CreateWallet(ctx context.Context) (*models.Wallet, error) {
	var response models.CreateWalletResponse
	if err := s.client.Post(ctx, "/create-wallet", nil, &response); err != nil {
		return nil, err
	}

	if !response.Success || response.WalletAddress == "" {
		msg := response.Message
		if msg == "" {
			msg = "Wallet creation failed"
		}
		return nil, fmt.Errorf("%w: %s", ErrWalletRejected, msg)
	}

	return &models.Wallet{
		Address:    strings.ToLower(response.WalletAddress),
		PrivateKey: response.PrivateKey,
	}, nil
}

func (s *WalletService) GetUserID(ctx context.Context, walletAddress string) (string, error) {
	var response models.WalletUserResponse

	request := models.WalletUserRequest{WalletAddress: strings.ToLower(walletAddress)}
	if err := s.client.Post(ctx, "/get-user-id", request, &response); err != nil {
		return "", err
	}

	if !response.Success || response.UserID == "" {
		msg := response.Message
		if msg == "" {
			msg = "Unable to fetch user id"
		}
		return "", fmt.Errorf("%w: %s", ErrWalletRejected, msg)
	}

	return response.UserID, nil
}
