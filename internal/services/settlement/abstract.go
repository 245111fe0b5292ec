package settlement

import (
	"context"
	"errors"

	"github.com/ahmetkoprulu/rtrp/arcade/models"
)

var (
	ErrRecordNotFound  = errors.New("settlement record not found")
	ErrAlreadyFinished = errors.New("settlement record already finished")
)

// Journal keeps one record per register-event attempt. A record moves from
// attempted to a final status once; Finish on a final record fails with
// ErrAlreadyFinished.
type Journal interface {
	Begin(ctx context.Context, record *models.SettlementRecord) error
	Finish(ctx context.Context, id string, status models.SettlementStatus, message string) error
	Get(ctx context.Context, id string) (*models.SettlementRecord, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.SettlementRecord, error)
}

// Publisher announces confirmed settlements to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, message *models.SettlementMessage) error
}
