package game

import (
	"sync"
)

// CrashChance is the probability that a single tap crashes the session.
const CrashChance = 0.10

type TapPhase string

const (
	TapPhaseReady   TapPhase = "ready"
	TapPhasePlaying TapPhase = "playing"
	TapPhaseCrashed TapPhase = "crashed"
	TapPhaseClaimed TapPhase = "claimed"
)

type TapState struct {
	Phase    TapPhase `json:"phase"`
	Score    int      `json:"score"`
	Claiming bool     `json:"claiming"`
}

// TapSession is the tap counter. Every tap adds one point and crashes the
// session with CrashChance; a claim settles the score.
type TapSession struct {
	mu       sync.Mutex
	phase    TapPhase
	score    int
	claiming bool
	rng      Rand
}

func NewTapSession(rng Rand) *TapSession {
	if rng == nil {
		rng = NewRand()
	}
	return &TapSession{phase: TapPhaseReady, rng: rng}
}

func (s *TapSession) State() TapState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *TapSession) state() TapState {
	return TapState{Phase: s.phase, Score: s.score, Claiming: s.claiming}
}

func (s *TapSession) CanStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == TapPhaseReady
}

func (s *TapSession) Start() (TapState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != TapPhaseReady {
		return s.state(), ErrNotReady
	}
	s.phase = TapPhasePlaying
	s.score = 0

	return s.state(), nil
}

func (s *TapSession) Tap() (TapState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != TapPhasePlaying {
		return s.state(), ErrNotPlaying
	}
	if s.claiming {
		return s.state(), ErrClaimInProgress
	}

	s.score++
	if s.rng.Float64() < CrashChance {
		s.phase = TapPhaseCrashed
	}

	return s.state(), nil
}

// Claim calls report exactly once with the current score and moves to claimed
// only when report succeeds. On failure the session stays playing.
func (s *TapSession) Claim(report func(score int) error) (TapState, error) {
	score, err := s.beginClaim()
	if err != nil {
		return s.State(), err
	}

	err = report(score)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.claiming = false
	if err != nil {
		return s.state(), err
	}
	s.phase = TapPhaseClaimed

	return s.state(), nil
}

func (s *TapSession) beginClaim() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != TapPhasePlaying {
		return 0, ErrNotPlaying
	}
	if s.claiming {
		return 0, ErrClaimInProgress
	}
	s.claiming = true

	return s.score, nil
}

func (s *TapSession) Reset() (TapState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.claiming {
		return s.state(), ErrClaimInProgress
	}
	s.phase = TapPhaseReady
	s.score = 0

	return s.state(), nil
}
