package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/net/websocket"

	"github.com/agroslabs/agros/common"
	"github.com/agroslabs/agros/pkg/agrolib"
)

// WebServer is the daemon's HTTP side. It accepts agromanagement
// documents pushed over a websocket (the web UI path) and hosts the
// JSON-RPC bridge and its websocket endpoint when RPC is enabled.
type WebServer struct {
	port   int
	l      *log.Logger
	ctl    Controller
	rpc    *RPCServer
	fs     afero.Fs
	server *http.Server
	mu     sync.Mutex
}

// capturedRun is a document submission pushed by a web client. The
// document travels inline; the daemon saves it under its data directory
// before starting the run.
type capturedRun struct {
	Name     string            `json:"name"`
	Document string            `json:"document"`
	Model    agrolib.ModelSpec `json:"model"`
}

func NewWebServer(l *log.Logger, port int, ctl Controller, rpc *RPCServer) *WebServer {
	return &WebServer{
		port: port,
		l:    l,
		ctl:  ctl,
		rpc:  rpc,
		fs:   afero.NewOsFs(),
	}
}

func (s *WebServer) processRun(cr *capturedRun) error {
	if cr.Document == "" {
		return fmt.Errorf("empty document")
	}
	// Reject broken documents before anything touches the disk.
	if _, err := agrolib.LoadDocument([]byte(cr.Document)); err != nil {
		return err
	}
	dir, err := agrolib.DocumentsDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("web-%d.yaml", time.Now().UnixNano()))
	if err := afero.WriteFile(s.fs, path, []byte(cr.Document), 0644); err != nil {
		return err
	}
	run, err := s.ctl.StartRun(&common.RunParams{
		Document: path,
		Name:     cr.Name,
		Model:    cr.Model,
	})
	if err != nil {
		return err
	}
	s.l.Println("Started run", run.Id, "from web submission")
	return nil
}

func (s *WebServer) handleConnection(conn *websocket.Conn) {
	defer conn.Close()
	for {
		var data []byte
		err := websocket.Message.Receive(conn, &data)
		if err != nil {
			if err == io.EOF {
				s.l.Println("Connection closed")
				return
			}
			s.l.Println("Error receiving message:", err)
			return
		}
		var cr capturedRun
		err = json.Unmarshal(data, &cr)
		if err != nil {
			s.l.Println("Error unmarshalling data:", err)
			continue
		}
		err = s.processRun(&cr)
		if err != nil {
			s.l.Println("Error processing run:", err)
			continue
		}
	}
}

func (s *WebServer) handler() http.Handler {
	mux := http.NewServeMux()
	if s.ctl != nil {
		mux.Handle("/", websocket.Handler(s.handleConnection))
	}
	if s.rpc != nil {
		mux.Handle("/rpc", requireToken(s.rpc.secret, s.rpc.bridge))
		mux.Handle("/rpc/ws", requireToken(s.rpc.secret, http.HandlerFunc(s.rpc.serveWS)))
	}
	return mux
}

func (s *WebServer) addr() string {
	if s.rpc != nil && s.rpc.listenAll {
		return fmt.Sprintf(":%d", s.port)
	}
	return fmt.Sprintf("%s:%d", common.TCPHost, s.port)
}

func (s *WebServer) Start() error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:    s.addr(),
		Handler: s.handler(),
	}
	s.mu.Unlock()

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil // expected during shutdown
	}
	return err
}

// Shutdown gracefully stops the web server.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
