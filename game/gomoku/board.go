// Package gomoku models the board state the code-challenge server sends in
// its your-turn frames, and the run-scanning helpers move policies build on.
package gomoku

import (
	"encoding/json"
	"fmt"
)

// Cell is one board position: empty, or occupied by a named player.
// On the wire a cell is the string "empty" or {"occupied":"<name>"}.
type Cell struct {
	Player string
}

// Empty reports whether no stone sits on the cell.
func (c Cell) Empty() bool { return c.Player == "" }

func (c *Cell) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "empty" {
			return fmt.Errorf("unknown cell value %q", s)
		}
		c.Player = ""
		return nil
	}

	var occ struct {
		Occupied string `json:"occupied"`
	}
	if err := json.Unmarshal(data, &occ); err != nil {
		return fmt.Errorf("decode cell: %w", err)
	}
	if occ.Occupied == "" {
		return fmt.Errorf("occupied cell without a player: %s", data)
	}
	c.Player = occ.Occupied
	return nil
}

func (c Cell) MarshalJSON() ([]byte, error) {
	if c.Empty() {
		return json.Marshal("empty")
	}
	return json.Marshal(map[string]string{"occupied": c.Player})
}

// Board is the gomoku grid, cells stored row-major.
type Board struct {
	Cells  []Cell `json:"cells"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Decode parses the state payload of a your-turn frame.
func Decode(state json.RawMessage) (*Board, error) {
	var b Board
	if err := json.Unmarshal(state, &b); err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	if b.Width <= 0 || b.Height <= 0 || len(b.Cells) != b.Width*b.Height {
		return nil, fmt.Errorf("inconsistent board: %dx%d with %d cells", b.Width, b.Height, len(b.Cells))
	}
	return &b, nil
}

// Point is a board coordinate.
type Point struct {
	X int
	Y int
}

// At returns the cell at (x, y), with ok false outside the board.
func (b *Board) At(x, y int) (Cell, bool) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return Cell{}, false
	}
	return b.Cells[y*b.Width+x], true
}

// Empties lists every open position in row-major order.
func (b *Board) Empties() []Point {
	var pts []Point
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.Cells[y*b.Width+x].Empty() {
				pts = append(pts, Point{X: x, Y: y})
			}
		}
	}
	return pts
}

// Full reports whether no open position remains.
func (b *Board) Full() bool {
	for _, c := range b.Cells {
		if c.Empty() {
			return false
		}
	}
	return true
}

// Players lists the distinct stone owners on the board.
func (b *Board) Players() []string {
	seen := make(map[string]bool)
	var players []string
	for _, c := range b.Cells {
		if c.Empty() || seen[c.Player] {
			continue
		}
		seen[c.Player] = true
		players = append(players, c.Player)
	}
	return players
}

// The four scan axes of five-in-a-row: horizontal, vertical and the two
// diagonals.
var directions = [4]Point{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// RunThrough returns how many consecutive stones player would own along
// the (dx, dy) axis after playing (x, y), counting the new stone.
func (b *Board) RunThrough(player string, x, y, dx, dy int) int {
	if player == "" {
		return 0
	}
	n := 1
	for i := 1; i < 5; i++ {
		cell, ok := b.At(x+dx*i, y+dy*i)
		if !ok || cell.Player != player {
			break
		}
		n++
	}
	for i := 1; i < 5; i++ {
		cell, ok := b.At(x-dx*i, y-dy*i)
		if !ok || cell.Player != player {
			break
		}
		n++
	}
	return n
}

// BestRun returns the longest run player would own after playing (x, y).
func (b *Board) BestRun(player string, x, y int) int {
	best := 0
	for _, d := range directions {
		if n := b.RunThrough(player, x, y, d.X, d.Y); n > best {
			best = n
		}
	}
	return best
}
