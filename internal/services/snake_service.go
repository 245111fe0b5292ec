package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ahmetkoprulu/rtrp/arcade/common/utils"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/game"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/metrics"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
	"go.uber.org/zap"
)

const SnakeFeeDescription = "Snake Game Fee"

type SnakeView struct {
	game.SnakeState
	EventID         string `json:"event_id,omitempty"`
	Winnings        int    `json:"winnings"`
	SettlementError string `json:"settlement_error,omitempty"`
}

// SnakeService plays the snake game for the current user. When the snake hits
// itself the winnings are reported once, in the tick goroutine.
type SnakeService struct {
	entry         *EntryService
	reporter      *SettlementReporter
	engine        *game.Snake
	settleTimeout time.Duration
	busy          atomic.Bool

	mu              sync.Mutex
	current         *Entry
	winnings        int
	settlementError string
}

func NewSnakeService(entry *EntryService, reporter *SettlementReporter, engine *game.Snake, settleTimeout time.Duration) *SnakeService {
	if settleTimeout <= 0 {
		settleTimeout = 15 * time.Second
	}
	return &SnakeService{entry: entry, reporter: reporter, engine: engine, settleTimeout: settleTimeout}
}

func (s *SnakeService) State() SnakeView {
	state := s.engine.State()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(state)
}

func (s *SnakeService) view(state game.SnakeState) SnakeView {
	v := SnakeView{SnakeState: state, Winnings: s.winnings, SettlementError: s.settlementError}
	if s.current != nil {
		v.EventID = s.current.Approval.EventID
	}
	return v
}

func (s *SnakeService) Start(ctx context.Context) (SnakeView, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return s.State(), ErrBusy
	}
	defer s.busy.Store(false)

	if !s.engine.CanStart() {
		return s.State(), game.ErrNotReady
	}

	entry, err := s.entry.Admit(ctx)
	if err != nil {
		return s.State(), err
	}

	s.mu.Lock()
	s.current = entry
	s.winnings = 0
	s.settlementError = ""
	s.mu.Unlock()

	state, err := s.engine.Start(s.onGameOver)
	if err != nil {
		return s.State(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(state), nil
}

func (s *SnakeService) SetDirection(direction string) (SnakeView, error) {
	d, err := game.ParseDirection(direction)
	if err != nil {
		return s.State(), err
	}

	state, err := s.engine.SetDirection(d)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(state), err
}

func (s *SnakeService) Reset() SnakeView {
	state := s.engine.Reset()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.winnings = 0
	s.settlementError = ""
	return s.view(state)
}

func (s *SnakeService) onGameOver(score int) {
	metrics.RecordGameOutcome(string(models.GameVariantSnake), string(game.SnakePhaseGameOver))
	if score <= 0 {
		return
	}

	s.mu.Lock()
	entry := s.current
	s.mu.Unlock()
	if entry == nil {
		return
	}

	winnings := score * game.EarningsPerFood
	ctx, cancel := context.WithTimeout(context.Background(), s.settleTimeout)
	defer cancel()

	err := s.reporter.Report(ctx, Settlement{
		UserID:          entry.Identity.UserID,
		EventType:       models.EventTypeGain,
		Amount:          winnings,
		ApprovalEventID: entry.Approval.EventID,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != entry {
		return
	}
	if err != nil {
		utils.Logger.Error("Error registering winnings", zap.Int("winnings", winnings), zap.Error(err))
		s.settlementError = err.Error()
		return
	}
	s.winnings = winnings
}
