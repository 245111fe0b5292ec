package settlement

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ahmetkoprulu/rtrp/arcade/models"
	"github.com/google/uuid"
)

// MemoryJournal is the journal used when no database is configured.
type MemoryJournal struct {
	mu      sync.Mutex
	records map[string]*models.SettlementRecord
	now     func() time.Time
}

var _ Journal = (*MemoryJournal)(nil)

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{
		records: make(map[string]*models.SettlementRecord),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (j *MemoryJournal) Begin(ctx context.Context, record *models.SettlementRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	now := j.now()
	record.Status = models.SettlementStatusAttempted
	record.CreatedAt = now
	record.UpdatedAt = now

	stored := *record
	j.records[record.ID] = &stored
	return nil
}

func (j *MemoryJournal) Finish(ctx context.Context, id string, status models.SettlementStatus, message string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	record, ok := j.records[id]
	if !ok {
		return ErrRecordNotFound
	}
	if record.Status != models.SettlementStatusAttempted {
		return fmt.Errorf("%w: %s is %s", ErrAlreadyFinished, id, record.Status)
	}
	record.Status = status
	record.Message = message
	record.UpdatedAt = j.now()
	return nil
}

func (j *MemoryJournal) Get(ctx context.Context, id string) (*models.SettlementRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	record, ok := j.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (j *MemoryJournal) ListByUser(ctx context.Context, userID string, limit int) ([]*models.SettlementRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	result := make([]*models.SettlementRecord, 0)
	for _, record := range j.records {
		if record.UserID == userID {
			copied := *record
			result = append(result, &copied)
		}
	}

	sort.SliceStable(result, func(a, b int) bool {
		return result[a].CreatedAt.After(result[b].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
