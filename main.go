// Command challenge-client is a bot runner for the code-challenge game
// server. It speaks the server's newline-delimited JSON protocol over TCP
// (or a WebSocket), authenticates, and answers every turn with a move
// chosen by a pluggable policy.
//
// It supports two modes:
//  1. "play" (default) – run one session against a server and exit
//  2. "mcp"            – run the session behind an MCP stdio bridge so an
//     external operator chooses the moves
//
// Flags control the server endpoint, credentials, policy, transport, debug
// logging, and an optional profile directory with per-bot JSON files.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/souze/code-challenge-client/client"
	"github.com/souze/code-challenge-client/config"
	"github.com/souze/code-challenge-client/logger"
	"github.com/souze/code-challenge-client/policy"
	"github.com/souze/code-challenge-client/transport"
	mcpbridge "github.com/souze/code-challenge-client/transport/mcp"
	wstransport "github.com/souze/code-challenge-client/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Code Challenge Game Client"
)

const dialTimeout = 10 * time.Second

func main() {
	cmd := rootCommand()
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCommand() *cli.Command {
	sessionFlags := []cli.Flag{
		&cli.StringFlag{Name: "server", Usage: "server address: host:port, or a ws:// URL with --transport websocket"},
		&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "player name"},
		&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "player password"},
		&cli.StringFlag{Name: "transport", Value: config.TransportTCP, Usage: "transport: tcp or websocket"},
		&cli.StringFlag{Name: "profile", Usage: "load a named profile instead of the flags above"},
	}

	return &cli.Command{
		Name:    "challenge-client",
		Usage:   "play turn-based games against a code-challenge server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.StringFlag{Name: "log-file", Usage: "optional rolling log file"},
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file with CHALLENGE_* variables"},
			&cli.StringFlag{Name: "profile-dir", Value: "profiles", Usage: "directory containing bot profiles"},
		},
		DefaultCommand: "play",
		Commands: []*cli.Command{
			{
				Name:  "play",
				Usage: "run one game session and exit",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "policy", Usage: "move policy: first-empty, sweep, random, heuristic"},
				}, sessionFlags...),
				Action: playAction,
			},
			{
				Name:   "mcp",
				Usage:  "run one session with moves chosen over MCP stdio",
				Flags:  sessionFlags,
				Action: mcpAction,
			},
		},
	}
}

func playAction(ctx context.Context, cmd *cli.Command) error {
	log := logger.Init(cmd.Bool("debug"), cmd.String("log-file"))
	defer log.Sync()

	profile, err := resolveProfile(cmd)
	if err != nil {
		return err
	}
	pol, err := policy.New(profile.Policy, profile.Username)
	if err != nil {
		return err
	}

	c, err := dialClient(ctx, profile, log)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Authenticate(client.Credentials{Username: profile.Username, Password: profile.Password}); err != nil {
		return err
	}

	log.Infow("session started", "server", profile.Server, "username", profile.Username, "policy", profile.Policy)
	res, err := c.Run(ctx, pol)
	if err != nil {
		return err
	}

	if res.GameOver {
		fmt.Printf("game over: %s (%d moves)\n", res.Reason, res.Moves)
	} else {
		fmt.Printf("server closed the session (%d moves)\n", res.Moves)
	}
	return nil
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	// stdout belongs to the MCP transport in this mode; the logger only
	// writes to stderr and the optional file.
	log := logger.Init(cmd.Bool("debug"), cmd.String("log-file"))
	defer log.Sync()

	profile, err := resolveProfile(cmd)
	if err != nil {
		return err
	}

	c, err := dialClient(ctx, profile, log)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Authenticate(client.Credentials{Username: profile.Username, Password: profile.Password}); err != nil {
		return err
	}

	bridge := mcpbridge.NewBridge()
	go func() {
		res, err := c.Run(ctx, bridge.Policy())
		bridge.Finish(res, err)
		if err != nil {
			log.Errorw("session failed", "err", err)
		} else {
			log.Infow("session finished", "moves", res.Moves, "reason", res.Reason)
		}
	}()

	log.Infow("serving MCP on stdio", "server", profile.Server, "username", profile.Username)
	if err := mcpserver.ServeStdio(bridge.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// resolveProfile builds the session profile from a named profile file or
// from the command-line flags, with CHALLENGE_* variables filling the gaps.
func resolveProfile(cmd *cli.Command) (*config.Profile, error) {
	if err := config.LoadEnv(cmd.String("env-file")); err != nil {
		return nil, err
	}

	if name := cmd.String("profile"); name != "" {
		mgr, err := config.NewManager(cmd.String("profile-dir"))
		if err != nil {
			return nil, err
		}
		return mgr.Load(name)
	}

	p := &config.Profile{
		Name:      "cli",
		Server:    cmd.String("server"),
		Transport: cmd.String("transport"),
		Username:  cmd.String("username"),
		Password:  cmd.String("password"),
		Policy:    cmd.String("policy"),
	}
	config.ApplyEnv(p)
	if err := config.Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

func dialClient(ctx context.Context, profile *config.Profile, log *zap.SugaredLogger) (*client.Client, error) {
	opts := transport.Options{DialTimeout: dialTimeout}

	if profile.Transport == config.TransportWebSocket {
		stream, err := wstransport.Dial(ctx, profile.Server, opts)
		if err != nil {
			return nil, err
		}
		return client.New(stream, log), nil
	}
	return client.Dial(profile.Server, opts, log)
}
