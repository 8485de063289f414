// Package mcp exposes a running game session over the Model Context
// Protocol, so an external operator (an LLM, or a human driving an MCP
// client) acts as the move policy.
//
// The bridge sits between the synchronous game loop and the MCP tools.
// When the server announces a turn, the loop blocks inside the bridge's
// policy until the operator calls the place tool:
//
//	bridge := mcp.NewBridge()
//	go func() {
//		res, err := c.Run(ctx, bridge.Policy())
//		bridge.Finish(res, err)
//	}()
//	server.ServeStdio(bridge.GetMCPServer())
//
// Tools:
//   - board: render the pending game state (a gomoku grid when it decodes
//     as one, raw JSON otherwise)
//   - place: play x,y on the pending turn
//   - session_status: turns played and, once over, the outcome
//
// One process drives one session; there is no session multiplexing.
package mcp
