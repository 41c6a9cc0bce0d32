package bridge

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/telvox/callbridge/pkg/openairt"
)

// fakeModelServer is a minimal realtime endpoint: it records every client
// event and acks session.update.
type fakeModelServer struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu     sync.Mutex
	events []map[string]any
}

func newFakeModelServer(t *testing.T) *fakeModelServer {
	t.Helper()
	f := &fakeModelServer{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := f.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var ev map[string]any
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			f.mu.Lock()
			f.events = append(f.events, ev)
			f.mu.Unlock()
			if ev["type"] == openairt.EventTypeSessionUpdate {
				conn.WriteJSON(map[string]any{"type": openairt.EventTypeSessionUpdated})
			}
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeModelServer) wsURL() string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http")
}

func (f *fakeModelServer) waitForType(t *testing.T, eventType string) {
	t.Helper()
	waitUntil(t, "model event "+eventType, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, ev := range f.events {
			if ev["type"] == eventType {
				return true
			}
		}
		return false
	})
}

func TestHandlerBridgesCall(t *testing.T) {
	modelSrv := newFakeModelServer(t)
	client := openairt.NewClient("test-key", openairt.WithWebSocketURL(modelSrv.wsURL()))

	h := NewHandler(Config{
		SettleDelay:       time.Millisecond,
		StartFrameTimeout: time.Second,
	}, client, nil, testLogger())
	srv := httptest.NewServer(h)
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	err = ws.WriteJSON(map[string]any{
		"event": "start",
		"start": map[string]any{"callId": "c1", "streamId": "s1"},
	})
	if err != nil {
		t.Fatalf("write start: %v", err)
	}

	modelSrv.waitForType(t, openairt.EventTypeSessionUpdate)
	modelSrv.waitForType(t, openairt.EventTypeResponseCreate)

	if err := ws.WriteJSON(map[string]any{"event": "stop"}); err != nil {
		t.Fatalf("write stop: %v", err)
	}
	modelSrv.waitForType(t, openairt.EventTypeInputAudioBufferCommit)

	// The bridge closes the telephony leg after stop.
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}

func TestHandlerRejectsCallWithoutStart(t *testing.T) {
	modelSrv := newFakeModelServer(t)
	client := openairt.NewClient("test-key", openairt.WithWebSocketURL(modelSrv.wsURL()))

	h := NewHandler(Config{StartFrameTimeout: 50 * time.Millisecond}, client, nil, testLogger())
	srv := httptest.NewServer(h)
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	// Never send a start frame; the bridge must give up and close.
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := ws.ReadMessage(); err == nil {
		t.Error("expected connection close without start frame")
	}

	modelSrv.mu.Lock()
	n := len(modelSrv.events)
	modelSrv.mu.Unlock()
	if n != 0 {
		t.Errorf("model dialed despite missing start frame: %d events", n)
	}
}
