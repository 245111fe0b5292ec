package services

import (
	"context"

	"github.com/ahmetkoprulu/rtrp/arcade/common/utils"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/api"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/expense"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/metrics"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
	"go.uber.org/zap"
)

// Entry is what a successful admission hands to the game.
type Entry struct {
	Identity models.UserIdentity
	Approval models.ApprovalResult
	Fee      models.FeeResult
}

// EntryService runs identity, approval gate and fee settlement in order. A
// failed step stops the chain; nothing about the game is touched here.
type EntryService struct {
	identity *IdentityService
	provider *api.ProviderService
	fees     expense.ExpenseProvider
	reporter *SettlementReporter
	fee      models.FeeRequest
	variant  models.GameVariant
}

// intentEventName tags the fee request. Intents keep the game name even when
// settlements are reported under a different event.
func intentEventName(cfg *models.Config) string {
	if cfg.IntentEventName != "" {
		return cfg.IntentEventName
	}
	return cfg.EventName
}

func NewEntryService(identity *IdentityService, provider *api.ProviderService, fees expense.ExpenseProvider, reporter *SettlementReporter, cfg *models.Config, description string) *EntryService {
	return &EntryService{
		identity: identity,
		provider: provider,
		fees:     fees,
		reporter: reporter,
		variant:  cfg.Variant,
		fee: models.FeeRequest{
			Amount:       cfg.EntryFee,
			TokenAddress: cfg.TokenAddress,
			Description:  description,
			EventName:    intentEventName(cfg),
		},
	}
}

func (s *EntryService) CheckApproval(ctx context.Context) (*models.ApprovalResult, error) {
	approval, err := s.provider.CheckApproval(ctx)
	if err != nil {
		return approval, classify(err, "Provider check failed")
	}
	return approval, nil
}

func (s *EntryService) Admit(ctx context.Context) (*Entry, error) {
	entry, err := s.admit(ctx)

	result := "ok"
	if err != nil {
		result = string(KindOf(err))
		utils.Logger.Info("Entry refused", zap.String("variant", string(s.variant)), zap.Error(err))
	}
	metrics.RecordEntry(string(s.variant), result)

	return entry, err
}

func (s *EntryService) admit(ctx context.Context) (*Entry, error) {
	identity, err := s.identity.Identity()
	if err != nil {
		return nil, err
	}

	approval, err := s.CheckApproval(ctx)
	if err != nil {
		return nil, err
	}

	fee, err := s.fees.RequestFee(ctx, s.fee)
	if err != nil {
		return nil, classify(err, "Fee request failed")
	}

	// The intent flow has the backend record the loss on approval.
	if !s.fees.RegistersLoss() {
		err := s.reporter.Report(ctx, Settlement{
			UserID:          identity.UserID,
			EventType:       models.EventTypeLoss,
			Amount:          s.fee.Amount,
			ApprovalEventID: approval.EventID,
			ExpenseIntentID: fee.IntentID,
		})
		if err != nil {
			return nil, err
		}
	}

	utils.Logger.Info("Entry fee settled",
		zap.String("user_id", identity.UserID),
		zap.String("event_id", approval.EventID),
		zap.String("intent_id", fee.IntentID),
	)

	return &Entry{Identity: *identity, Approval: *approval, Fee: *fee}, nil
}
