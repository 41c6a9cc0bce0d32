package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/telvox/callbridge/pkg/callcfg"
	"github.com/telvox/callbridge/pkg/mediastream"
	"github.com/telvox/callbridge/pkg/openairt"
)

// ModelDialer opens the model leg of a call. Satisfied by *openairt.Client.
type ModelDialer interface {
	Connect(ctx context.Context, config *openairt.ConnectConfig) (*openairt.Session, error)
}

// Handler accepts telephony media-stream websockets and bridges each one to
// a model session. One ServeHTTP call spans one whole phone call.
type Handler struct {
	cfg    Config
	dialer ModelDialer
	calls  *callcfg.Store
	log    *slog.Logger

	upgrader websocket.Upgrader
}

// NewHandler builds a Handler. calls may be nil, in which case every call
// uses the Config defaults.
func NewHandler(cfg Config, dialer ModelDialer, calls *callcfg.Store, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		cfg:    cfg.withDefaults(),
		dialer: dialer,
		calls:  calls,
		log:    log,
		upgrader: websocket.Upgrader{
			// The telephony provider is not a browser; no origin check.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	conn := mediastream.NewConn(ws)

	start, err := readStart(conn, h.cfg.StartFrameTimeout)
	if err != nil {
		h.log.Warn("no start frame", "error", err)
		conn.Close()
		return
	}
	log := h.log.With("call_id", start.CallID, "stream_id", start.StreamID)
	log.Info("call connected")

	var cc callcfg.Config
	if h.calls != nil {
		cc, err = h.calls.Lookup(r.Context(), start.CallID)
		if err != nil {
			// Defaults still produce a working call.
			log.Warn("call config lookup failed", "error", err)
		}
	}

	model, err := h.dialer.Connect(r.Context(), &openairt.ConnectConfig{Model: h.cfg.Model})
	if err != nil {
		// Fatal setup failure: abort before any relay begins.
		log.Error("model dial failed", "error", err)
		conn.Close()
		return
	}

	sess := NewSession(h.cfg, conn, model, cc.Greeting, cc.Instructions, log)
	sess.SetStreamID(start.StreamID)
	if err := sess.Run(r.Context()); err != nil {
		log.Error("call ended with error", "error", err)
		return
	}
	log.Info("call ended")
}

// readStart waits for the start frame that carries the call and stream
// identifiers. Frames before it are dropped; the wait is bounded.
func readStart(conn *mediastream.Conn, timeout time.Duration) (*mediastream.StartInfo, error) {
	deadline := time.Now().Add(timeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	defer conn.SetReadDeadline(time.Time{})

	for time.Now().Before(deadline) {
		ev, err := conn.ReadEvent()
		if errors.Is(err, mediastream.ErrBadFrame) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if ev.Event == mediastream.EventStart && ev.Start != nil {
			return ev.Start, nil
		}
	}
	return nil, fmt.Errorf("bridge: no start frame within %s", timeout)
}
