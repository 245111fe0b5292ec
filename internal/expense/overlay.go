package expense

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ahmetkoprulu/rtrp/arcade/common/utils"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
	"go.uber.org/zap"
)

const sdkScript = "/empowor-sdk.js"

type IntentCreator interface {
	CreateIntent(ctx context.Context, request models.IntentRequest) (*models.ExpenseIntent, error)
}

// TokenSource returns the current provider access token and end-user token.
type TokenSource func() (accessToken, userToken string)

type OverlayConfig struct {
	ApiBase         string
	FrontendBaseUrl string
	ExpiresIn       int
}

// OverlayProvider creates an expense intent and waits for the overlay decision.
// On approval the backend registers EVENT_LOSS itself.
type OverlayProvider struct {
	intents IntentCreator
	overlay Overlay
	tokens  TokenSource
	config  OverlayConfig
}

var _ ExpenseProvider = (*OverlayProvider)(nil)

func NewOverlayProvider(intents IntentCreator, overlay Overlay, tokens TokenSource, config OverlayConfig) *OverlayProvider {
	return &OverlayProvider{
		intents: intents,
		overlay: overlay,
		tokens:  tokens,
		config:  config,
	}
}

func (p *OverlayProvider) RegistersLoss() bool {
	return true
}

func (p *OverlayProvider) RequestFee(ctx context.Context, request models.FeeRequest) (*models.FeeResult, error) {
	intent, err := p.intents.CreateIntent(ctx, models.IntentRequest{
		Amount:       request.Amount,
		TokenAddress: request.TokenAddress,
		Description:  request.Description,
		ExpiresIn:    p.config.ExpiresIn,
		EventName:    request.EventName,
	})
	if err != nil {
		return nil, err
	}

	link := NormalizeApprovalLink(intent.ApprovalLink, p.config.FrontendBaseUrl)
	intentID := intent.ID
	if intentID == "" {
		intentID = IntentID(link)
	}

	if err := p.prepare(ctx); err != nil {
		return nil, err
	}

	status, err := p.overlay.Open(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("overlay failed: %w", err)
	}

	result := &models.FeeResult{Status: status, IntentID: intentID}
	utils.Logger.Info("Overlay resolved",
		zap.String("intent_id", intentID),
		zap.String("status", string(status)),
	)

	return result, denied(result)
}

func (p *OverlayProvider) prepare(ctx context.Context) error {
	if p.overlay == nil {
		return ErrSDKNotLoaded
	}

	loaded, err := p.overlay.Loaded(ctx)
	if err != nil {
		return fmt.Errorf("failed to query sdk: %w", err)
	}
	if !loaded {
		if err := p.overlay.Load(ctx, p.config.FrontendBaseUrl+sdkScript); err != nil {
			return fmt.Errorf("failed to load sdk: %w", err)
		}
	}

	options := InitOptions{ApiBase: p.config.ApiBase}
	if p.tokens != nil {
		options.AccessToken, options.UserToken = p.tokens()
	}

	return p.overlay.Init(ctx, options)
}

// NormalizeApprovalLink rewrites approval links pointing at a local dev host
// to the hosted overlay page. Other links, and unparsable ones, are kept.
func NormalizeApprovalLink(link, frontendBase string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}

	host := u.Hostname()
	if host != "localhost" && host != "127.0.0.1" {
		return link
	}

	id := IntentID(link)
	if id == "" {
		return link
	}

	return strings.TrimRight(frontendBase, "/") + "/#/overlay?intent_id=" + strings.ReplaceAll(url.QueryEscape(id), "+", "%20")
}

// IntentID extracts the intent_id query of an approval link, including links
// that carry the query inside the fragment.
func IntentID(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}

	if id := u.Query().Get("intent_id"); id != "" {
		return id
	}

	if _, query, ok := strings.Cut(u.EscapedFragment(), "?"); ok {
		if values, err := url.ParseQuery(query); err == nil {
			return values.Get("intent_id")
		}
	}

	return ""
}
