// Package policy collects MovePolicy implementations for the game client,
// from the placeholder sweep to a gomoku-aware heuristic. New maps the
// policy names used in profiles and on the command line to instances.
package policy

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/souze/code-challenge-client/client"
	"github.com/souze/code-challenge-client/game/gomoku"
	"github.com/souze/code-challenge-client/protocol"
)

// ErrNoMoves reports a live state with no open cell to play.
var ErrNoMoves = errors.New("no open cells left")

// Func adapts a bare function to the MovePolicy interface.
type Func func(ctx context.Context, state protocol.ServerMessage) (int, int, error)

// Choose calls f.
func (f Func) Choose(ctx context.Context, state protocol.ServerMessage) (int, int, error) {
	return f(ctx, state)
}

// Sweep is the placeholder policy: it walks x across the board on a fixed
// row and ignores the state entirely.
type Sweep struct {
	y    int
	next int
}

// NewSweep returns a Sweep playing row y.
func NewSweep(y int) *Sweep {
	return &Sweep{y: y}
}

func (p *Sweep) Choose(context.Context, protocol.ServerMessage) (int, int, error) {
	x := p.next
	p.next++
	return x, p.y, nil
}

// FirstEmpty plays the first open cell in row-major order.
type FirstEmpty struct{}

func (FirstEmpty) Choose(_ context.Context, state protocol.ServerMessage) (int, int, error) {
	board, err := gomoku.Decode(state.State())
	if err != nil {
		return 0, 0, err
	}
	empties := board.Empties()
	if len(empties) == 0 {
		return 0, 0, ErrNoMoves
	}
	return empties[0].X, empties[0].Y, nil
}

// Random plays a uniformly random open cell.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a Random seeded for reproducibility in tests.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (p *Random) Choose(_ context.Context, state protocol.ServerMessage) (int, int, error) {
	board, err := gomoku.Decode(state.State())
	if err != nil {
		return 0, 0, err
	}
	empties := board.Empties()
	if len(empties) == 0 {
		return 0, 0, ErrNoMoves
	}
	pt := empties[p.rng.Intn(len(empties))]
	return pt.X, pt.Y, nil
}

// Heuristic plays gomoku on purpose: it completes a five-in-a-row when one
// is available, blocks an opponent about to complete one, and otherwise
// grows the position with the most run potential on both sides.
type Heuristic struct {
	// Player is the username whose stones count as ours.
	Player string
}

func (p Heuristic) Choose(_ context.Context, state protocol.ServerMessage) (int, int, error) {
	board, err := gomoku.Decode(state.State())
	if err != nil {
		return 0, 0, err
	}
	empties := board.Empties()
	if len(empties) == 0 {
		return 0, 0, ErrNoMoves
	}

	best := empties[0]
	bestScore := -1
	for _, pt := range empties {
		if score := p.score(board, pt); score > bestScore {
			best = pt
			bestScore = score
		}
	}
	return best.X, best.Y, nil
}

func (p Heuristic) score(b *gomoku.Board, pt gomoku.Point) int {
	own := b.BestRun(p.Player, pt.X, pt.Y)
	if own >= 5 {
		return 1 << 20
	}

	threat := 0
	for _, other := range b.Players() {
		if other == p.Player {
			continue
		}
		if n := b.BestRun(other, pt.X, pt.Y); n > threat {
			threat = n
		}
	}
	if threat >= 5 {
		return 1 << 19
	}

	// Winning potential counts slightly more than denial so the policy
	// keeps attacking on quiet boards.
	return 10*own*own + 8*threat*threat
}

// New returns the named policy. username feeds policies that need to know
// which stones are theirs; an empty name selects first-empty.
func New(name, username string) (client.MovePolicy, error) {
	switch name {
	case "", "first-empty":
		return FirstEmpty{}, nil
	case "sweep":
		return NewSweep(2), nil
	case "random":
		return NewRandom(rand.Int63()), nil
	case "heuristic":
		return Heuristic{Player: username}, nil
	}
	return nil, fmt.Errorf("unknown policy %q (known: %v)", name, Names())
}

// Names lists the policy names New accepts.
func Names() []string {
	return []string{"first-empty", "sweep", "random", "heuristic"}
}
