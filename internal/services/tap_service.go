package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ahmetkoprulu/rtrp/arcade/internal/game"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/metrics"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
)

const TapFeeDescription = "Tap Box Fee"

type TapView struct {
	game.TapState
	EventID string `json:"event_id,omitempty"`
}

// TapService plays the tap game for the current user once the entry fee is
// settled, and claims the score as EVENT_GAIN.
type TapService struct {
	entry    *EntryService
	reporter *SettlementReporter
	session  *game.TapSession
	busy     atomic.Bool

	mu      sync.Mutex
	current *Entry
}

func NewTapService(entry *EntryService, reporter *SettlementReporter, session *game.TapSession) *TapService {
	return &TapService{entry: entry, reporter: reporter, session: session}
}

func (s *TapService) State() TapView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(s.session.State())
}

func (s *TapService) view(state game.TapState) TapView {
	v := TapView{TapState: state}
	if s.current != nil {
		v.EventID = s.current.Approval.EventID
	}
	return v
}

func (s *TapService) Start(ctx context.Context) (TapView, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return s.State(), ErrBusy
	}
	defer s.busy.Store(false)

	if !s.session.CanStart() {
		return s.State(), game.ErrNotReady
	}

	entry, err := s.entry.Admit(ctx)
	if err != nil {
		return s.State(), err
	}

	state, err := s.session.Start()
	if err != nil {
		return s.State(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = entry
	return s.view(state), nil
}

func (s *TapService) Tap() (TapView, error) {
	state, err := s.session.Tap()
	if err == nil && state.Phase == game.TapPhaseCrashed {
		metrics.RecordGameOutcome(string(models.GameVariantTapBox), string(game.TapPhaseCrashed))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(state), err
}

// Claim registers the current score, zero included, as one EVENT_GAIN.
func (s *TapService) Claim(ctx context.Context) (TapView, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return s.State(), ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	var approvalEventID string
	if s.current != nil {
		approvalEventID = s.current.Approval.EventID
	}
	s.mu.Unlock()

	state, err := s.session.Claim(func(score int) error {
		identity, err := s.entry.identity.Identity()
		if err != nil {
			return err
		}
		return s.reporter.Report(ctx, Settlement{
			UserID:          identity.UserID,
			EventType:       models.EventTypeGain,
			Amount:          score,
			ApprovalEventID: approvalEventID,
		})
	})
	if err == nil {
		metrics.RecordGameOutcome(string(models.GameVariantTapBox), string(game.TapPhaseClaimed))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(state), err
}

func (s *TapService) Reset() (TapView, error) {
	state, err := s.session.Reset()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		s.current = nil
	}
	return s.view(state), err
}
