package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"

	"github.com/agroslabs/agros/pkg/agrolib"
)

const webDocument = `
AgroManagement:
- 2001-01-01:
    CropCalendar:
      crop_id: winter-wheat
      crop_start_date: 2001-01-15
      crop_start_type: sowing
      crop_end_date: 2001-08-05
      crop_end_type: harvest
      max_duration: 300
    TimedEvents: null
    StateEvents: null
- 2002-01-01: null
`

func newTestWebServer(t *testing.T, ctl Controller) (*WebServer, *httptest.Server) {
	t.Helper()
	if err := agrolib.SetDataDir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	ws := NewWebServer(log.New(io.Discard, "", 0), 0, ctl, nil)
	srv := httptest.NewServer(ws.handler())
	t.Cleanup(srv.Close)
	return ws, srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, err := websocket.Dial(wsURL, "", srv.URL)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitStarted(ctl *fakeController, n int) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ctl.mu.Lock()
		got := len(ctl.started)
		ctl.mu.Unlock()
		if got >= n {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestWebServerStartsSubmittedRun(t *testing.T) {
	ctl := &fakeController{}
	_, srv := newTestWebServer(t, ctl)
	conn := dialWS(t, srv)

	payload, _ := json.Marshal(capturedRun{
		Name:     "from-web",
		Document: webDocument,
		Model:    agrolib.ModelSpec{Kind: "ramp", Variable: "DVS", Step: 0.02},
	})
	if err := websocket.Message.Send(conn, payload); err != nil {
		t.Fatalf("send: %v", err)
	}

	if !waitStarted(ctl, 1) {
		t.Fatal("run was never started")
	}
	ctl.mu.Lock()
	params := ctl.started[0]
	ctl.mu.Unlock()

	if params.Name != "from-web" {
		t.Errorf("name = %q", params.Name)
	}
	if params.Model.Kind != "ramp" || params.Model.Variable != "DVS" {
		t.Errorf("model = %+v", params.Model)
	}
	// The daemon must have saved the inline document to disk.
	data, err := os.ReadFile(params.Document)
	if err != nil {
		t.Fatalf("document not saved: %v", err)
	}
	if !strings.Contains(string(data), "AgroManagement") {
		t.Errorf("saved document looks wrong: %s", data)
	}
}

func TestWebServerRejectsBrokenSubmissions(t *testing.T) {
	ctl := &fakeController{}
	_, srv := newTestWebServer(t, ctl)
	conn := dialWS(t, srv)

	// Invalid JSON is skipped and the connection stays usable.
	if err := websocket.Message.Send(conn, []byte("not json")); err != nil {
		t.Fatalf("send: %v", err)
	}
	// A document that does not parse never reaches the controller.
	payload, _ := json.Marshal(capturedRun{Document: "AgroManagement: 12"})
	if err := websocket.Message.Send(conn, payload); err != nil {
		t.Fatalf("send: %v", err)
	}
	// Empty documents are rejected outright.
	payload, _ = json.Marshal(capturedRun{Name: "empty"})
	if err := websocket.Message.Send(conn, payload); err != nil {
		t.Fatalf("send: %v", err)
	}

	// A good submission afterwards still goes through, which proves the
	// handler survived the broken ones.
	payload, _ = json.Marshal(capturedRun{Name: "ok", Document: webDocument})
	if err := websocket.Message.Send(conn, payload); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !waitStarted(ctl, 1) {
		t.Fatal("valid submission after broken ones was not processed")
	}
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if len(ctl.started) != 1 || ctl.started[0].Name != "ok" {
		t.Fatalf("unexpected starts: %+v", ctl.started)
	}
}
