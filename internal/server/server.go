package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/agroslabs/agros/common"
	"github.com/agroslabs/agros/internal/journal"
	"github.com/agroslabs/agros/pkg/agrolib"
)

// Controller drives run lifecycle operations on behalf of the web
// bridge and the rpc endpoints. The api layer implements it.
type Controller interface {
	// StartRun creates a run from params and either launches it or
	// schedules it, depending on StartAt and CronExpr.
	StartRun(params *common.RunParams) (*agrolib.Run, error)
	// StopRun stops an executing run or cancels a scheduled one.
	StopRun(runId string) (*common.StopResponse, error)
	// RemoveRun flushes one finished run and its journal.
	RemoveRun(runId string) error
}

// Server accepts framed requests from CLI clients over a unix socket
// (named pipe on Windows, TCP as fallback), dispatches them to
// registered handlers, and manages the pool of attached connections.
type Server struct {
	log      *log.Logger
	pool     *Pool
	notifier *RPCNotifier
	manager  *agrolib.Manager
	journal  *journal.Journal
	ws       *WebServer
	rpc      *RPCServer
	rpcCfg   *RPCConfig
	ctl      Controller
	handler  map[common.UpdateType]HandlerFunc
	port     int
	listener net.Listener
	mu       sync.Mutex
}

// NewServer creates a Server on the given port. The web bridge listens
// on port+1. rpcCfg may be nil, which disables the JSON-RPC endpoints.
func NewServer(l *log.Logger, m *agrolib.Manager, jrnl *journal.Journal, port int, rpcCfg *RPCConfig) *Server {
	return &Server{
		log:      l,
		pool:     NewPool(l),
		notifier: NewRPCNotifier(l),
		manager:  m,
		journal:  jrnl,
		rpcCfg:   rpcCfg,
		handler:  make(map[common.UpdateType]HandlerFunc),
		port:     port,
	}
}

// SetController wires the run lifecycle controller used by the web
// bridge and the rpc endpoints. Must be called before Start.
func (s *Server) SetController(ctl Controller) {
	s.ctl = ctl
}

// Pool returns the connection pool so the api layer can broadcast
// ticking updates.
func (s *Server) Pool() *Pool {
	return s.pool
}

// Notifier returns the rpc push notifier. Broadcasting to it is a no-op
// while no websocket rpc clients are connected.
func (s *Server) Notifier() *RPCNotifier {
	return s.notifier
}

// RegisterHandler associates a handler function with a method. When a
// request with the given method is received, the handler is invoked.
func (s *Server) RegisterHandler(method common.UpdateType, handler HandlerFunc) {
	s.handler[method] = handler
}

// Start begins listening for incoming connections and blocks until the
// context is canceled. The web bridge runs in a separate goroutine.
// Each accepted connection is handled in its own goroutine.
func (s *Server) Start(ctx context.Context) error {
	if s.rpcCfg != nil && s.rpcCfg.Secret != "" {
		s.rpc = NewRPCServer(s.rpcCfg, s.manager, s.journal, s.pool, s.notifier, s.ctl)
	}
	s.ws = NewWebServer(s.log, s.port+1, s.ctl, s.rpc)
	go func() {
		if err := s.ws.Start(); err != nil {
			s.log.Println("Web server error:", err.Error())
		}
	}()

	l, err := s.createListener()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil // clean shutdown
			default:
			}
			s.log.Println("Error accepting:", err.Error())
			continue
		}
		go s.handleConnection(conn)
	}
}

// Shutdown gracefully stops the server by closing the listener, the web
// bridge, the rpc bridge, and removing the socket file.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.log.Printf("Error closing listener: %v", err)
		}
		s.listener = nil
	}

	if s.ws != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.ws.Shutdown(shutdownCtx); err != nil {
			s.log.Printf("Error shutting down web server: %v", err)
		}
	}

	if s.rpc != nil {
		s.rpc.Close()
	}

	if err := cleanupSocket(); err != nil {
		s.log.Printf("Error removing socket file: %v", err)
	}
	return nil
}

func (s *Server) handleConnection(conn net.Conn) {
	sconn := NewSyncConn(conn)
	defer conn.Close()
	for {
		buf, err := sconn.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			s.log.Println("Error reading:", err.Error())
			break
		}
		err = s.handlerWrapper(sconn, buf)
		if err != nil {
			s.log.Println("Error handling:", err.Error())
			break
		}
	}
}

func (s *Server) handlerWrapper(sconn *SyncConn, b []byte) error {
	req, err := ParseRequest(b)
	if err != nil {
		return fmt.Errorf("error parsing request: %s", err.Error())
	}
	rHandler, ok := s.handler[req.Method]
	if !ok {
		err = sconn.Write(CreateError("unknown method: " + string(req.Method)))
		if err != nil {
			return fmt.Errorf("error writing response: %s", err.Error())
		}
		return nil
	}
	utype, msg, err := rHandler(sconn, s.pool, req.Message)
	if err != nil {
		err = sconn.Write(InitError(err))
		if err != nil {
			return fmt.Errorf("error writing response: %s", err.Error())
		}
		return nil
	}
	err = sconn.Write(MakeResult(utype, msg))
	if err != nil {
		return fmt.Errorf("error writing response: %s", err.Error())
	}
	return nil
}
