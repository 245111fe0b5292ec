// Package expense charges the entry fee through the external wallet SDK, either
// by an expense intent approved in an overlay or by a direct SDK request.
package expense

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetkoprulu/rtrp/arcade/models"
)

var (
	ErrPaymentDenied = errors.New("expense not approved")
	ErrSDKNotLoaded  = errors.New("SDK not loaded")
)

// ExpenseProvider charges one fee and waits for the user's decision. A result
// that is not approved comes back together with ErrPaymentDenied.
type ExpenseProvider interface {
	RequestFee(ctx context.Context, request models.FeeRequest) (*models.FeeResult, error)
	// RegistersLoss reports whether the backend records EVENT_LOSS itself on approval.
	RegistersLoss() bool
}

// Overlay is the embedded approval frame of the intent flow.
type Overlay interface {
	Loaded(ctx context.Context) (bool, error)
	Load(ctx context.Context, scriptURL string) error
	Init(ctx context.Context, options InitOptions) error
	Open(ctx context.Context, approvalLink string) (models.FeeStatus, error)
}

// SDK is the injected wallet object of the direct flow.
type SDK interface {
	RequestExpense(ctx context.Context, request models.FeeRequest) (*models.FeeResult, error)
}

type InitOptions struct {
	ApiBase     string `json:"apiBase"`
	AccessToken string `json:"accessToken,omitempty"`
	UserToken   string `json:"userToken,omitempty"`
}

func denied(result *models.FeeResult) error {
	if result.Approved() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrPaymentDenied, result.Status)
}
