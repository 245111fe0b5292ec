package game

import (
	"strings"
	"sync"
	"time"
)

const (
	BoardSize             = 20
	TickPeriod            = 150 * time.Millisecond
	FoodPlacementAttempts = 100
	EarningsPerFood       = 1
)

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Direction string

const (
	DirectionUp    Direction = "UP"
	DirectionDown  Direction = "DOWN"
	DirectionLeft  Direction = "LEFT"
	DirectionRight Direction = "RIGHT"
)

func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	switch d {
	case DirectionUp, DirectionDown, DirectionLeft, DirectionRight:
		return d, nil
	}
	return "", ErrInvalidDirection
}

func (d Direction) Opposite() Direction {
	switch d {
	case DirectionUp:
		return DirectionDown
	case DirectionDown:
		return DirectionUp
	case DirectionLeft:
		return DirectionRight
	case DirectionRight:
		return DirectionLeft
	}
	return ""
}

// Step moves p one cell in d on the toroidal board.
func (p Point) Step(d Direction) Point {
	switch d {
	case DirectionUp:
		p.Y = (p.Y - 1 + BoardSize) % BoardSize
	case DirectionDown:
		p.Y = (p.Y + 1) % BoardSize
	case DirectionLeft:
		p.X = (p.X - 1 + BoardSize) % BoardSize
	case DirectionRight:
		p.X = (p.X + 1) % BoardSize
	}
	return p
}

type SnakePhase string

const (
	SnakePhasePayment  SnakePhase = "payment"
	SnakePhasePlaying  SnakePhase = "playing"
	SnakePhaseGameOver SnakePhase = "gameOver"
)

type SnakeState struct {
	Phase     SnakePhase `json:"phase"`
	Snake     []Point    `json:"snake"`
	Food      Point      `json:"food"`
	Direction Direction  `json:"direction"`
	Score     int        `json:"score"`
}

var (
	initialHead = Point{X: 10, Y: 10}
	initialFood = Point{X: 15, Y: 15}
)

// Snake is the tick driven snake game. Ticks and direction changes go through
// one mutex; a direction change only takes effect on the next tick.
type Snake struct {
	mu        sync.Mutex
	phase     SnakePhase
	body      []Point
	food      Point
	heading   Direction
	next      Direction
	score     int
	ending    bool
	cancel    func()
	onEnd     func(score int)
	scheduler Scheduler
	rng       Rand
}

func NewSnake(scheduler Scheduler, rng Rand) *Snake {
	if scheduler == nil {
		scheduler = TickerScheduler{}
	}
	if rng == nil {
		rng = NewRand()
	}

	s := &Snake{scheduler: scheduler, rng: rng}
	s.reset()
	return s
}

func (s *Snake) reset() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.phase = SnakePhasePayment
	s.body = []Point{initialHead}
	s.food = initialFood
	s.heading = DirectionRight
	s.next = DirectionRight
	s.score = 0
	s.ending = false
	s.onEnd = nil
}

func (s *Snake) State() SnakeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *Snake) state() SnakeState {
	body := make([]Point, len(s.body))
	copy(body, s.body)
	return SnakeState{
		Phase:     s.phase,
		Snake:     body,
		Food:      s.food,
		Direction: s.next,
		Score:     s.score,
	}
}

func (s *Snake) CanStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == SnakePhasePayment
}

// Start begins ticking. onEnd runs once, outside the lock, when the snake hits
// itself.
func (s *Snake) Start(onEnd func(score int)) (SnakeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != SnakePhasePayment {
		return s.state(), ErrNotReady
	}

	s.reset()
	s.phase = SnakePhasePlaying
	s.onEnd = onEnd
	s.placeFood()
	s.cancel = s.scheduler.Every(TickPeriod, s.tick)

	return s.state(), nil
}

// SetDirection queues d for the next tick. Reversing into the heading used by
// the last tick is rejected.
func (s *Snake) SetDirection(d Direction) (SnakeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != SnakePhasePlaying {
		return s.state(), ErrNotPlaying
	}
	if d == s.heading.Opposite() {
		return s.state(), ErrReverseDirection
	}
	s.next = d

	return s.state(), nil
}

func (s *Snake) Reset() SnakeState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	return s.state()
}

func (s *Snake) tick() {
	onEnd, score, ended := s.advance()
	if ended && onEnd != nil {
		onEnd(score)
	}
}

func (s *Snake) advance() (func(int), int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != SnakePhasePlaying || s.ending {
		return nil, 0, false
	}

	s.heading = s.next
	head := s.body[0].Step(s.heading)

	body := make([]Point, 0, len(s.body)+1)
	body = append(body, head)
	body = append(body, s.body...)
	if head == s.food {
		s.score++
		s.body = body
		s.placeFood()
	} else {
		s.body = body[:len(body)-1]
	}

	if !s.collided() {
		return nil, 0, false
	}

	s.ending = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.phase = SnakePhaseGameOver

	return s.onEnd, s.score, true
}

func (s *Snake) collided() bool {
	head := s.body[0]
	for _, seg := range s.body[1:] {
		if seg == head {
			return true
		}
	}
	return false
}

func (s *Snake) occupied(p Point) bool {
	for _, seg := range s.body {
		if seg == p {
			return true
		}
	}
	return false
}

// placeFood tries random cells first, then scans for any free cell, and keeps
// the last random candidate when the board is full.
func (s *Snake) placeFood() {
	var candidate Point
	for i := 0; i < FoodPlacementAttempts; i++ {
		candidate = Point{X: s.rng.IntN(BoardSize), Y: s.rng.IntN(BoardSize)}
		if !s.occupied(candidate) {
			s.food = candidate
			return
		}
	}

	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			p := Point{X: x, Y: y}
			if !s.occupied(p) {
				s.food = p
				return
			}
		}
	}

	s.food = candidate
}
