package cmd

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/agroslabs/agros/common"
	"github.com/agroslabs/agros/internal/api"
	"github.com/agroslabs/agros/internal/journal"
	"github.com/agroslabs/agros/internal/scheduler"
	"github.com/agroslabs/agros/internal/server"
	"github.com/agroslabs/agros/pkg/agrolib"
	"github.com/agroslabs/agros/pkg/logger"
)

// DaemonComponents holds all initialized daemon components.
// This allows for unified initialization and cleanup across
// console mode and Windows service mode.
type DaemonComponents struct {
	Manager   *agrolib.Manager
	Journal   *journal.Journal
	Scheduler *scheduler.Scheduler
	Api       *api.Api
	Server    *server.Server
	logger    logger.Logger
	stdLogger interface{ Println(v ...interface{}) }
	stopSched context.CancelFunc
}

// Close releases all daemon component resources in reverse order of initialization.
// This ensures proper cleanup regardless of how the daemon was started.
func (c *DaemonComponents) Close() {
	if c.stdLogger != nil {
		c.stdLogger.Println("Shutting down daemon...")
	}

	// Stop ticking runs first; their final status is persisted by the
	// run goroutine before the registry closes.
	if c.Manager != nil {
		for _, run := range c.Manager.GetRuns() {
			if run.IsActive() {
				if c.stdLogger != nil {
					c.stdLogger.Println("Stopping run:", run.Id)
				}
				_ = run.Stop()
			}
		}
	}

	// Stop the schedule heap goroutine.
	if c.stopSched != nil {
		c.stopSched()
	}

	// Close API (closes journal and the run registry)
	if c.Api != nil {
		_ = c.Api.Close()
	}

	if c.stdLogger != nil {
		c.stdLogger.Println("Daemon stopped")
	}
}

// daemonPort returns the request port for the daemon, honoring the same
// environment override the clients use for dialing.
func daemonPort() int {
	if v := os.Getenv(common.TCPPortEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 && port <= 65535 {
			return port
		}
	}
	return DEF_PORT
}

// initDaemonComponents initializes all daemon components with the provided logger.
// This is the shared initialization used by both console mode and Windows service mode.
// Returns the initialized components or an error if initialization fails.
//
// On error, any partially initialized components are cleaned up before returning.
var initDaemonComponents = func(lg logger.Logger) (*DaemonComponents, error) {
	stdLog := logger.ToStdLogger(lg)

	// Open the run registry
	m, err := agrolib.InitManager()
	if err != nil {
		lg.Error("Run registry initialization failed: %v", err)
		return nil, err
	}

	// Open the event journal
	jrnl, err := journal.Open(agrolib.JournalPath())
	if err != nil {
		lg.Error("Journal initialization failed: %v", err)
		m.Close()
		return nil, err
	}

	// The JSON-RPC endpoints stay disabled without a token.
	rpcCfg := &server.RPCConfig{
		Version:   currentBuildArgs.Version,
		Commit:    currentBuildArgs.Commit,
		BuildType: currentBuildArgs.BuildType,
	}
	if secret, terr := server.NewTokenStore(agrolib.DataDir).Token(); terr != nil {
		lg.Warning("RPC token unavailable, rpc endpoints disabled: %v", terr)
	} else {
		rpcCfg.Secret = secret
	}

	// Create server
	serv := server.NewServer(stdLog, m, jrnl, daemonPort(), rpcCfg)

	// Create the scheduler. Triggers resolve through apiRef, assigned
	// below before the first schedule is added.
	var apiRef *api.Api
	schedCtx, stopSched := context.WithCancel(context.Background())
	sched := scheduler.New(schedCtx, func(runId string) {
		apiRef.TriggerScheduled(runId)
	})

	// Create API
	s, err := api.NewApi(stdLog, m, jrnl, sched, serv.Pool(), serv.Notifier(),
		currentBuildArgs.Version, currentBuildArgs.Commit, currentBuildArgs.BuildType)
	if err != nil {
		lg.Error("API initialization failed: %v", err)
		stopSched()
		jrnl.Close()
		m.Close()
		return nil, err
	}
	apiRef = s
	s.RegisterHandlers(serv)
	serv.SetController(s)

	// Re-arm schedules that survived a restart and fire the missed ones.
	missed, future := scheduler.LoadSchedules(m.GetRuns(), time.Now())
	for _, ev := range future {
		sched.Add(ev)
	}
	for _, run := range missed {
		lg.Info("Starting run %s, its schedule passed while the daemon was down", run.Id)
		go s.TriggerScheduled(run.Id)
	}

	return &DaemonComponents{
		Manager:   m,
		Journal:   jrnl,
		Scheduler: sched,
		Api:       s,
		Server:    serv,
		logger:    lg,
		stdLogger: stdLog,
		stopSched: stopSched,
	}, nil
}

// startServerFunc starts the daemon's socket server. Variable so tests
// can stub the blocking accept loop.
var startServerFunc = func(ctx context.Context, serv *server.Server) error {
	return serv.Start(ctx)
}
