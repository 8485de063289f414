package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/souze/code-challenge-client/client"
	"github.com/souze/code-challenge-client/game/gomoku"
	"github.com/souze/code-challenge-client/protocol"
)

// Bridge adapts one game session to MCP tools.
type Bridge struct {
	mcpServer *server.MCPServer

	mu       sync.Mutex
	state    *protocol.ServerMessage
	turns    int
	finished bool
	result   client.Result
	runErr   error

	moves chan [2]int
}

// NewBridge creates a bridge with all tools registered.
func NewBridge() *Bridge {
	b := &Bridge{moves: make(chan [2]int)}
	b.initMCPServer()
	return b
}

func (b *Bridge) initMCPServer() {
	b.mcpServer = server.NewMCPServer(
		"Code Challenge Game Client",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Code Challenge Game Client - MCP Interface

You are playing a turn-based board game (five-in-a-row on the reference
server). The client is connected and authenticated; every time the server
announces your turn, the session waits for you.

AVAILABLE TOOLS:
- board: Show the state you must respond to
- place: Play a move at x,y (0-based, x is the column)
- session_status: Turns played so far and the outcome once the game ends

Call board, pick an empty cell, then call place. The session sends exactly
one move per turn; place fails when no turn is waiting.`),
	)

	b.registerTools()
}

func (b *Bridge) registerTools() {
	b.mcpServer.AddTool(mcp.Tool{
		Name:        "board",
		Description: "Show the game state currently waiting for a move",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, b.handleBoard)

	b.mcpServer.AddTool(mcp.Tool{
		Name:        "place",
		Description: "Play a move at the given coordinates on the pending turn",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell to play (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell to play (0-based)",
				},
			},
			Required: []string{"x", "y"},
		},
	}, b.handlePlace)

	b.mcpServer.AddTool(mcp.Tool{
		Name:        "session_status",
		Description: "Report turns played and the session outcome",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, b.handleStatus)
}

// GetMCPServer returns the underlying MCP server for serving.
func (b *Bridge) GetMCPServer() *server.MCPServer {
	return b.mcpServer
}

// Policy returns the MovePolicy that hands each turn to the MCP operator.
func (b *Bridge) Policy() client.MovePolicy {
	return bridgePolicy{b: b}
}

// Finish records the session outcome for session_status.
func (b *Bridge) Finish(res client.Result, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finished = true
	b.result = res
	b.runErr = err
	b.state = nil
}

type bridgePolicy struct {
	b *Bridge
}

func (p bridgePolicy) Choose(ctx context.Context, state protocol.ServerMessage) (int, int, error) {
	p.b.mu.Lock()
	p.b.state = &state
	p.b.turns++
	p.b.mu.Unlock()

	defer func() {
		p.b.mu.Lock()
		p.b.state = nil
		p.b.mu.Unlock()
	}()

	select {
	case mv := <-p.b.moves:
		return mv[0], mv[1], nil
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	}
}

// Tool handlers

func (b *Bridge) handleBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b.mu.Lock()
	state := b.state
	b.mu.Unlock()

	if state == nil {
		return mcp.NewToolResultError("no turn is pending; the server has not asked for a move"), nil
	}

	if board, err := gomoku.Decode(state.State()); err == nil {
		return mcp.NewToolResultText(renderBoard(board)), nil
	}
	return mcp.NewToolResultText(string(state.State())), nil
}

func (b *Bridge) handlePlace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("x and y are required"), nil
	}
	x, okX := args["x"].(float64)
	y, okY := args["y"].(float64)
	if !okX || !okY {
		return mcp.NewToolResultError("x and y must be integers"), nil
	}

	select {
	case b.moves <- [2]int{int(x), int(y)}:
		return mcp.NewToolResultText(fmt.Sprintf("played (%d,%d)", int(x), int(y))), nil
	default:
		return mcp.NewToolResultError("no turn is waiting for a move"), nil
	}
}

func (b *Bridge) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Turns played: %d\n", b.turns)
	switch {
	case !b.finished && b.state != nil:
		sb.WriteString("A turn is waiting for your move.\n")
	case !b.finished:
		sb.WriteString("Waiting for the server.\n")
	case b.runErr != nil:
		fmt.Fprintf(&sb, "Session failed: %v\n", b.runErr)
	case b.result.GameOver:
		fmt.Fprintf(&sb, "Game over: %s (%d moves)\n", b.result.Reason, b.result.Moves)
	default:
		fmt.Fprintf(&sb, "Server closed the session after %d moves.\n", b.result.Moves)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// renderBoard draws the grid with one letter per player and column/row
// indices around the edge.
func renderBoard(b *gomoku.Board) string {
	marks := make(map[string]byte)
	var legend []string
	for _, player := range b.Players() {
		mark := byte('A' + len(marks))
		marks[player] = mark
		legend = append(legend, fmt.Sprintf("%c = %s", mark, player))
	}

	var sb strings.Builder
	sb.WriteString("   ")
	for x := 0; x < b.Width; x++ {
		fmt.Fprintf(&sb, "%2d", x%100)
	}
	sb.WriteByte('\n')

	for y := 0; y < b.Height; y++ {
		fmt.Fprintf(&sb, "%2d ", y%100)
		for x := 0; x < b.Width; x++ {
			cell, _ := b.At(x, y)
			if cell.Empty() {
				sb.WriteString(" .")
			} else {
				fmt.Fprintf(&sb, " %c", marks[cell.Player])
			}
		}
		sb.WriteByte('\n')
	}

	if len(legend) > 0 {
		sb.WriteByte('\n')
		sb.WriteString(strings.Join(legend, ", "))
		sb.WriteByte('\n')
	}
	return sb.String()
}
