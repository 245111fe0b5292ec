package expense

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmetkoprulu/rtrp/arcade/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIntents struct {
	requests []models.IntentRequest
	intent   *models.ExpenseIntent
	err      error
}

func (f *fakeIntents) CreateIntent(ctx context.Context, request models.IntentRequest) (*models.ExpenseIntent, error) {
	f.requests = append(f.requests, request)
	return f.intent, f.err
}

type fakeOverlay struct {
	loaded  bool
	loads   []string
	inits   []InitOptions
	opened  []string
	status  models.FeeStatus
	openErr error
}

func (f *fakeOverlay) Loaded(ctx context.Context) (bool, error) { return f.loaded, nil }

func (f *fakeOverlay) Load(ctx context.Context, scriptURL string) error {
	f.loads = append(f.loads, scriptURL)
	f.loaded = true
	return nil
}

func (f *fakeOverlay) Init(ctx context.Context, options InitOptions) error {
	f.inits = append(f.inits, options)
	return nil
}

func (f *fakeOverlay) Open(ctx context.Context, approvalLink string) (models.FeeStatus, error) {
	f.opened = append(f.opened, approvalLink)
	return f.status, f.openErr
}

type fakeSDK struct {
	requests []models.FeeRequest
	result   *models.FeeResult
	err      error
}

func (f *fakeSDK) RequestExpense(ctx context.Context, request models.FeeRequest) (*models.FeeResult, error) {
	f.requests = append(f.requests, request)
	return f.result, f.err
}

func TestNormalizeApprovalLink(t *testing.T) {
	const fe = "https://fe.example.com"

	tests := []struct {
		name string
		link string
		want string
	}{
		{"localhost query", "http://localhost:3000/overlay?intent_id=abc", fe + "/#/overlay?intent_id=abc"},
		{"loopback fragment", "http://127.0.0.1:5173/#/overlay?intent_id=a%20b", fe + "/#/overlay?intent_id=a%20b"},
		{"id is escaped", "http://localhost/x?intent_id=a%2Fb%26c", fe + "/#/overlay?intent_id=a%2Fb%26c"},
		{"remote host kept", "https://pay.example.com/#/overlay?intent_id=abc", "https://pay.example.com/#/overlay?intent_id=abc"},
		{"no intent kept", "http://localhost:3000/overlay", "http://localhost:3000/overlay"},
		{"garbage kept", "::not a url", "::not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeApprovalLink(tt.link, fe+"/"))
		})
	}
}

func TestOverlayProvider(t *testing.T) {
	config := OverlayConfig{ApiBase: "https://api.example.com", FrontendBaseUrl: "https://fe.example.com", ExpiresIn: 600}
	tokens := func() (string, string) { return "provider", "user" }
	fee := models.FeeRequest{Amount: 5, TokenAddress: "0xabc", Description: "Tap Box Fee", EventName: "Xplosion_Casino"}

	t.Run("approved intent loads sdk and opens normalized link", func(t *testing.T) {
		intents := &fakeIntents{intent: &models.ExpenseIntent{Success: true, ApprovalLink: "http://localhost:3000/overlay?intent_id=i-1"}}
		overlay := &fakeOverlay{status: models.FeeStatusApproved}
		provider := NewOverlayProvider(intents, overlay, tokens, config)

		result, err := provider.RequestFee(context.Background(), fee)
		require.NoError(t, err)
		assert.True(t, result.Approved())
		assert.Equal(t, "i-1", result.IntentID)
		assert.True(t, provider.RegistersLoss())

		require.Len(t, intents.requests, 1)
		assert.Equal(t, models.IntentRequest{Amount: 5, TokenAddress: "0xabc", Description: "Tap Box Fee", ExpiresIn: 600, EventName: "Xplosion_Casino"}, intents.requests[0])
		assert.Equal(t, []string{"https://fe.example.com/empowor-sdk.js"}, overlay.loads)
		assert.Equal(t, []InitOptions{{ApiBase: config.ApiBase, AccessToken: "provider", UserToken: "user"}}, overlay.inits)
		assert.Equal(t, []string{"https://fe.example.com/#/overlay?intent_id=i-1"}, overlay.opened)
	})

	t.Run("loaded sdk is not reloaded", func(t *testing.T) {
		intents := &fakeIntents{intent: &models.ExpenseIntent{Success: true, ApprovalLink: "https://fe.example.com/#/overlay?intent_id=i-2"}}
		overlay := &fakeOverlay{loaded: true, status: models.FeeStatusApproved}
		provider := NewOverlayProvider(intents, overlay, tokens, config)

		_, err := provider.RequestFee(context.Background(), fee)
		require.NoError(t, err)
		assert.Empty(t, overlay.loads)
	})

	t.Run("cancelled overlay is a payment denial", func(t *testing.T) {
		intents := &fakeIntents{intent: &models.ExpenseIntent{Success: true, ApprovalLink: "https://fe.example.com/#/overlay?intent_id=i-3"}}
		overlay := &fakeOverlay{loaded: true, status: models.FeeStatusCancelled}
		provider := NewOverlayProvider(intents, overlay, tokens, config)

		result, err := provider.RequestFee(context.Background(), fee)
		require.ErrorIs(t, err, ErrPaymentDenied)
		assert.Equal(t, models.FeeStatusCancelled, result.Status)
	})

	t.Run("intent failure never opens the overlay", func(t *testing.T) {
		intents := &fakeIntents{err: errors.New("boom")}
		overlay := &fakeOverlay{status: models.FeeStatusApproved}
		provider := NewOverlayProvider(intents, overlay, tokens, config)

		_, err := provider.RequestFee(context.Background(), fee)
		require.Error(t, err)
		assert.Empty(t, overlay.opened)
	})

	t.Run("overlay error is surfaced", func(t *testing.T) {
		intents := &fakeIntents{intent: &models.ExpenseIntent{Success: true, ApprovalLink: "https://fe.example.com/#/overlay?intent_id=i-4"}}
		overlay := &fakeOverlay{loaded: true, openErr: context.DeadlineExceeded}
		provider := NewOverlayProvider(intents, overlay, tokens, config)

		_, err := provider.RequestFee(context.Background(), fee)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestDirectProvider(t *testing.T) {
	fee := models.FeeRequest{Amount: 5, TokenAddress: "0xabc", Description: "Snake Game Entry Fee"}

	t.Run("missing sdk", func(t *testing.T) {
		_, err := NewDirectProvider(nil).RequestFee(context.Background(), fee)
		require.ErrorIs(t, err, ErrSDKNotLoaded)
		assert.Equal(t, "SDK not loaded", err.Error())
	})

	t.Run("approved", func(t *testing.T) {
		sdk := &fakeSDK{result: &models.FeeResult{Status: models.FeeStatusApproved, IntentID: "i-9"}}
		provider := NewDirectProvider(sdk)

		result, err := provider.RequestFee(context.Background(), fee)
		require.NoError(t, err)
		assert.Equal(t, "i-9", result.IntentID)
		assert.False(t, provider.RegistersLoss())
		assert.Equal(t, []models.FeeRequest{fee}, sdk.requests)
	})

	t.Run("denied", func(t *testing.T) {
		sdk := &fakeSDK{result: &models.FeeResult{Status: models.FeeStatusDenied}}

		_, err := NewDirectProvider(sdk).RequestFee(context.Background(), fee)
		require.ErrorIs(t, err, ErrPaymentDenied)
	})

	t.Run("empty result is a denial", func(t *testing.T) {
		_, err := NewDirectProvider(&fakeSDK{}).RequestFee(context.Background(), fee)
		require.ErrorIs(t, err, ErrPaymentDenied)
	})
}
