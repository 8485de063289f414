// Command swarm hammers a game server with a churning population of bots.
// Bots connect, play with a random policy for a random lifetime, get cut
// off, idle a while, and come back under the same identity. Each bot runs
// the ordinary single-session client; concurrency exists only across bots.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/souze/code-challenge-client/client"
	"github.com/souze/code-challenge-client/logger"
	"github.com/souze/code-challenge-client/policy"
	"github.com/souze/code-challenge-client/transport"
)

var (
	server   = flag.String("server", "localhost:7654", "game server address (host:port)")
	bots     = flag.Int("bots", 13, "number of bot identities")
	password = flag.String("password", "kermit", "password shared by all bots")
	maxLife  = flag.Duration("max-life", 30*time.Second, "longest session lifetime before a bot is cut off")
	maxIdle  = flag.Duration("max-idle", 5*time.Second, "longest pause between a bot's sessions")
	logFile  = flag.String("log-file", "", "optional rolling log file")
	debug    = flag.Bool("debug", false, "enable debug logging")
)

func main() {
	flag.Parse()

	log := logger.Init(*debug, *logFile)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()[:8]
	log.Infow("starting swarm", "server", *server, "bots", *bots, "run", runID)

	var wg sync.WaitGroup
	for i := 0; i < *bots; i++ {
		wg.Add(1)
		name := fmt.Sprintf("bot-%s-%d", runID, i+1)
		go func(name string, seed int64) {
			defer wg.Done()
			runBot(ctx, name, seed, log)
		}(name, int64(i)+time.Now().UnixNano())
	}

	wg.Wait()
	log.Infow("swarm stopped")
}

// runBot cycles one identity through idle/play rounds until the run is
// stopped.
func runBot(ctx context.Context, name string, seed int64, log *zap.SugaredLogger) {
	rng := rand.New(rand.NewSource(seed))
	creds := client.Credentials{Username: name, Password: *password}

	for {
		idle := randDuration(rng, *maxIdle)
		select {
		case <-ctx.Done():
			return
		case <-time.After(idle):
		}

		pol := randomPolicy(rng, name)
		life := randDuration(rng, *maxLife) + time.Second

		// The read timeout doubles as the kill switch: the baseline
		// client blocks in reads, so cancellation alone cannot cut a
		// session short mid-turn.
		opts := transport.Options{DialTimeout: 3 * time.Second, ReadTimeout: life}
		sessionCtx, cancel := context.WithTimeout(ctx, life)
		res, err := client.Play(sessionCtx, *server, creds, pol, opts, log)
		cancel()

		switch {
		case err == nil:
			log.Infow("session finished", "bot", name, "moves", res.Moves, "reason", res.Reason)
		case ctx.Err() != nil:
			return
		default:
			log.Warnw("session aborted", "bot", name, "err", err)
		}
	}
}

func randDuration(rng *rand.Rand, max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rng.Int63n(int64(max)))
}

func randomPolicy(rng *rand.Rand, name string) client.MovePolicy {
	names := policy.Names()
	pol, err := policy.New(names[rng.Intn(len(names))], name)
	if err != nil {
		return policy.FirstEmpty{}
	}
	return pol
}
