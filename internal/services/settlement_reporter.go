package services

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetkoprulu/rtrp/arcade/common/utils"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/api"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/metrics"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/services/settlement"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Settlement is one gain or loss to register for a user.
type Settlement struct {
	UserID          string
	EventType       models.EventType
	Amount          int
	ApprovalEventID string
	ExpenseIntentID string
}

type EventRegistrar interface {
	RegisterEvent(ctx context.Context, event models.SettlementEvent) error
}

// SettlementReporter sends settlement events to the provider. Every attempt is
// journalled; confirmed ones are published when a publisher is set.
//
// Delivery is at most once attempted, not exactly once: a response lost after
// the request was sent is journalled as unknown and still fails the caller.
type SettlementReporter struct {
	events       EventRegistrar
	journal      settlement.Journal
	publisher    settlement.Publisher
	variant      models.GameVariant
	eventName    string
	tokenAddress string
}

func NewSettlementReporter(events EventRegistrar, journal settlement.Journal, publisher settlement.Publisher, cfg *models.Config) *SettlementReporter {
	if journal == nil {
		journal = settlement.NewMemoryJournal()
	}

	return &SettlementReporter{
		events:       events,
		journal:      journal,
		publisher:    publisher,
		variant:      cfg.Variant,
		eventName:    cfg.EventName,
		tokenAddress: cfg.TokenAddress,
	}
}

func (r *SettlementReporter) Report(ctx context.Context, s Settlement) error {
	if s.UserID == "" {
		return newValidationError("Please log in first")
	}

	record := &models.SettlementRecord{
		UserID:          s.UserID,
		EventName:       r.eventName,
		EventType:       s.EventType,
		Amount:          s.Amount,
		ApprovalEventID: s.ApprovalEventID,
		ExpenseIntentID: s.ExpenseIntentID,
	}
	if err := r.journal.Begin(ctx, record); err != nil {
		utils.Logger.Error("Failed to journal settlement attempt", zap.Error(err))
	}

	err := r.events.RegisterEvent(ctx, models.SettlementEvent{
		UserID:          s.UserID,
		EventName:       r.eventName,
		EventType:       s.EventType,
		Amount:          s.Amount,
		TokenAddress:    r.tokenAddress,
		ExpenseIntentID: s.ExpenseIntentID,
	})

	status := models.SettlementStatusConfirmed
	message := ""
	switch {
	case errors.Is(err, api.ErrOutcomeUnknown):
		status = models.SettlementStatusUnknown
		message = err.Error()
	case err != nil:
		status = models.SettlementStatusFailed
		message = err.Error()
	}

	r.finish(record, status, message)
	metrics.RecordSettlement(string(s.EventType), string(status))

	if err != nil {
		utils.Logger.Warn("Settlement registration failed",
			zap.String("user_id", s.UserID),
			zap.String("event_type", string(s.EventType)),
			zap.Int("amount", s.Amount),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return classify(err, "Failed to register event")
	}

	utils.Logger.Info("Settlement registered",
		zap.String("user_id", s.UserID),
		zap.String("event_type", string(s.EventType)),
		zap.Int("amount", s.Amount),
	)
	r.publish(ctx, record)

	return nil
}

func (r *SettlementReporter) History(ctx context.Context, userID string, limit int) ([]*models.SettlementRecord, error) {
	if userID == "" {
		return nil, newValidationError("Please log in first")
	}
	return r.journal.ListByUser(ctx, userID, limit)
}

// finish runs detached from the caller's context so a cancelled request still
// records its outcome.
func (r *SettlementReporter) finish(record *models.SettlementRecord, status models.SettlementStatus, message string) {
	if record.ID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.journal.Finish(ctx, record.ID, status, message); err != nil {
		utils.Logger.Error("Failed to finish settlement record", zap.String("id", record.ID), zap.Error(err))
	}
	record.Status = status
	record.Message = message
}

func (r *SettlementReporter) publish(ctx context.Context, record *models.SettlementRecord) {
	if r.publisher == nil {
		return
	}

	message := &models.SettlementMessage{
		MessageID:       uuid.New().String(),
		Timestamp:       time.Now().UTC(),
		Variant:         string(r.variant),
		UserID:          record.UserID,
		EventName:       record.EventName,
		EventType:       record.EventType,
		Amount:          record.Amount,
		ApprovalEventID: record.ApprovalEventID,
		ExpenseIntentID: record.ExpenseIntentID,
	}
	if err := r.publisher.Publish(ctx, message); err != nil {
		utils.Logger.Error("Failed to publish settlement", zap.String("user_id", record.UserID), zap.Error(err))
	}
}
