// Package game holds the two client-local minigames. Neither knows about fees
// or settlement; services drive them once the entry workflow has succeeded.
package game

import (
	"errors"
	"math/rand/v2"
	"time"
)

type GameError error

var (
	ErrNotReady         GameError = errors.New("game_not_ready")
	ErrNotPlaying       GameError = errors.New("game_not_playing")
	ErrClaimInProgress  GameError = errors.New("game_claim_in_progress")
	ErrReverseDirection GameError = errors.New("game_reverse_direction")
	ErrInvalidDirection GameError = errors.New("game_invalid_direction")
)

// Rand is the randomness a game draws from. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

func NewRand() Rand {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

// IsGameError reports whether err is a rule violation of one of the games.
func IsGameError(err error) bool {
	for _, target := range []error{ErrNotReady, ErrNotPlaying, ErrClaimInProgress, ErrReverseDirection, ErrInvalidDirection} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
