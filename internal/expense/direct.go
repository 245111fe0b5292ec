package expense

import (
	"context"
	"fmt"

	"github.com/ahmetkoprulu/rtrp/arcade/models"
)

// DirectProvider asks the injected SDK for the fee. The caller registers
// EVENT_LOSS itself with the returned intent id.
type DirectProvider struct {
	sdk SDK
}

var _ ExpenseProvider = (*DirectProvider)(nil)

func NewDirectProvider(sdk SDK) *DirectProvider {
	return &DirectProvider{sdk: sdk}
}

func (p *DirectProvider) RegistersLoss() bool {
	return false
}

func (p *DirectProvider) RequestFee(ctx context.Context, request models.FeeRequest) (*models.FeeResult, error) {
	if p.sdk == nil {
		return nil, ErrSDKNotLoaded
	}

	result, err := p.sdk.RequestExpense(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("sdk request failed: %w", err)
	}
	if result == nil {
		result = &models.FeeResult{Status: models.FeeStatusDenied}
	}

	return result, denied(result)
}
