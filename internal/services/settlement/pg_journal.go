package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetkoprulu/rtrp/arcade/common/data"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
	"github.com/jackc/pgx/v5"
)

type PgJournal struct {
	db *data.PgDbContext
}

var _ Journal = (*PgJournal)(nil)

func NewPgJournal(db *data.PgDbContext) *PgJournal {
	return &PgJournal{db: db}
}

func (j *PgJournal) Begin(ctx context.Context, record *models.SettlementRecord) error {
	if record.ID == "" {
		record.ID = j.db.GenerateNewId()
	}
	now := time.Now().UTC()
	record.Status = models.SettlementStatusAttempted
	record.CreatedAt = now
	record.UpdatedAt = now

	query := `
		INSERT INTO settlement_journal (id, user_id, event_name, event_type, amount, approval_event_id, expense_intent_id, status, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := j.db.Exec(ctx, query,
		record.ID, record.UserID, record.EventName, string(record.EventType), record.Amount,
		record.ApprovalEventID, record.ExpenseIntentID, string(record.Status), record.Message,
		record.CreatedAt, record.UpdatedAt,
	)
	return err
}

func (j *PgJournal) Finish(ctx context.Context, id string, status models.SettlementStatus, message string) error {
	return j.db.WithTransaction(ctx, func(q data.QueryRunner) error {
		return finishRecord(ctx, q, id, status, message, time.Now().UTC())
	})
}

// finishRecord locks the row so concurrent finishers see one transition only.
func finishRecord(ctx context.Context, q data.QueryRunner, id string, status models.SettlementStatus, message string, now time.Time) error {
	var current string
	err := q.QueryRow(ctx, `SELECT status FROM settlement_journal WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRecordNotFound
	}
	if err != nil {
		return err
	}
	if models.SettlementStatus(current) != models.SettlementStatusAttempted {
		return fmt.Errorf("%w: %s is %s", ErrAlreadyFinished, id, current)
	}

	query := `
		UPDATE settlement_journal
		SET status = $2, message = $3, updated_at = $4
		WHERE id = $1
	`

	_, err = q.Exec(ctx, query, id, string(status), message, now)
	return err
}

func (j *PgJournal) Get(ctx context.Context, id string) (*models.SettlementRecord, error) {
	query := `
		SELECT id, user_id, event_name, event_type, amount, approval_event_id, expense_intent_id, status, message, created_at, updated_at
		FROM settlement_journal
		WHERE id = $1
	`

	var records []models.SettlementRecord
	rows, err := j.db.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if err := j.db.ScanRows(rows, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrRecordNotFound
	}

	return &records[0], nil
}

func (j *PgJournal) ListByUser(ctx context.Context, userID string, limit int) ([]*models.SettlementRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, event_name, event_type, amount, approval_event_id, expense_intent_id, status, message, created_at, updated_at
		FROM settlement_journal
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := j.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}

	var records []models.SettlementRecord
	if err := j.db.ScanRows(rows, &records); err != nil {
		return nil, err
	}

	result := make([]*models.SettlementRecord, 0, len(records))
	for i := range records {
		result = append(result, &records[i])
	}
	return result, nil
}
