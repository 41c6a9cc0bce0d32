package openairt

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Session is a websocket-based realtime session. It is created by
// Client.Connect and owned by a single call for its lifetime.
//
// Command methods may be called from multiple goroutines; writes are
// serialized by an internal mutex. Events must be consumed from one
// goroutine via Events.
type Session struct {
	conn      *websocket.Conn
	config    *ConnectConfig
	sessionID string
	closeCh   chan struct{}
	eventsCh  chan eventOrError
	closeOnce sync.Once
	closeErr  error
	mu        sync.Mutex
}

type eventOrError struct {
	event *ServerEvent
	err   error
}

// Connect establishes a websocket connection to the Realtime API.
// A dial failure is a fatal setup error; no session is left open.
func (c *Client) Connect(ctx context.Context, config *ConnectConfig) (*Session, error) {
	if config == nil {
		config = &ConnectConfig{}
	}
	if config.Model == "" {
		config.Model = ModelGPTRealtime
	}

	url := fmt.Sprintf("%s?model=%s", c.config.wsURL, config.Model)

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+c.config.apiKey)
	headers.Set("OpenAI-Beta", "realtime=v1")
	if c.config.organization != "" {
		headers.Set("OpenAI-Organization", c.config.organization)
	}
	if c.config.project != "" {
		headers.Set("OpenAI-Project", c.config.project)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: c.config.httpClient.Timeout,
	}

	conn, resp, err := dialer.DialContext(ctx, url, headers)
	if err != nil {
		if resp != nil {
			return nil, &Error{
				Code:       "connection_failed",
				Message:    fmt.Sprintf("failed to connect: %v", err),
				HTTPStatus: resp.StatusCode,
			}
		}
		return nil, fmt.Errorf("openairt: failed to connect: %w", err)
	}

	session := &Session{
		conn:     conn,
		config:   config,
		closeCh:  make(chan struct{}),
		eventsCh: make(chan eventOrError, 100),
	}

	go session.readLoop()

	return session, nil
}

// generateEventID generates a unique client event ID.
func generateEventID() string {
	return "evt_" + uuid.New().String()[:12]
}

// UpdateSession updates the session configuration.
func (s *Session) UpdateSession(config *SessionConfig) error {
	return s.sendEvent(map[string]interface{}{
		"event_id": generateEventID(),
		"type":     EventTypeSessionUpdate,
		"session":  config,
	})
}

// AppendAudio appends raw audio to the input audio buffer. The bytes are
// base64 encoded before sending.
func (s *Session) AppendAudio(audio []byte) error {
	return s.AppendAudioBase64(base64.StdEncoding.EncodeToString(audio))
}

// AppendAudioBase64 appends base64-encoded audio to the input buffer. The
// telephony leg already delivers base64 payloads, so this is the hot path.
func (s *Session) AppendAudioBase64(audioBase64 string) error {
	return s.sendEvent(map[string]interface{}{
		"event_id": generateEventID(),
		"type":     EventTypeInputAudioBufferAppend,
		"audio":    audioBase64,
	})
}

// CommitInput commits the audio buffer. In server VAD mode the server
// commits automatically; the bridge sends one final commit on call stop.
func (s *Session) CommitInput() error {
	return s.sendEvent(map[string]interface{}{
		"event_id": generateEventID(),
		"type":     EventTypeInputAudioBufferCommit,
	})
}

// ClearInput clears the input audio buffer without creating a message.
func (s *Session) ClearInput() error {
	return s.sendEvent(map[string]interface{}{
		"event_id": generateEventID(),
		"type":     EventTypeInputAudioBufferClear,
	})
}

// CreateResponse requests the model to generate a response.
// Pass nil for default options.
func (s *Session) CreateResponse(opts *ResponseCreateOptions) error {
	event := map[string]interface{}{
		"event_id": generateEventID(),
		"type":     EventTypeResponseCreate,
	}

	if opts != nil {
		response := map[string]interface{}{}
		if len(opts.Modalities) > 0 {
			response["modalities"] = opts.Modalities
		}
		if opts.Instructions != "" {
			response["instructions"] = opts.Instructions
		}
		if opts.Temperature != nil {
			response["temperature"] = *opts.Temperature
		}
		if len(response) > 0 {
			event["response"] = response
		}
	}

	return s.sendEvent(event)
}

// CancelResponse cancels the current response generation. Cancellation is
// best-effort; it may race with a response that is already ending.
func (s *Session) CancelResponse() error {
	return s.sendEvent(map[string]interface{}{
		"event_id": generateEventID(),
		"type":     EventTypeResponseCancel,
	})
}

// SendRaw sends a raw JSON event to the server.
func (s *Session) SendRaw(event map[string]interface{}) error {
	return s.sendEvent(event)
}

// Events returns an iterator over server events. The iterator yields events
// until the session is closed or a transport read error occurs; after an
// error is yielded, iteration stops. Error events from the server are
// yielded as events (with Err set), not as iterator errors, and frames that
// fail to parse are dropped without ending iteration.
func (s *Session) Events() iter.Seq2[*ServerEvent, error] {
	return func(yield func(*ServerEvent, error) bool) {
		for {
			select {
			case <-s.closeCh:
				return
			case item, ok := <-s.eventsCh:
				if !ok {
					return
				}
				if !yield(item.event, item.err) {
					return
				}
				if item.err != nil {
					return
				}
			}
		}
	}
}

// Close closes the session. Safe to call multiple times and from the
// shutdown path of either relay loop.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.closeCh)
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

// SessionID returns the session ID assigned by the server, or empty if
// session.created has not arrived yet.
func (s *Session) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// sendEvent sends a JSON event to the server.
func (s *Session) sendEvent(event map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		if jsonBytes, err := json.Marshal(event); err == nil {
			str := string(jsonBytes)
			if len(str) > 500 {
				str = str[:500] + "..."
			}
			slog.Debug("sending event", "content", str)
		}
	}

	return s.conn.WriteJSON(event)
}

// readLoop reads frames from the websocket connection and pumps normalized
// events into eventsCh.
func (s *Session) readLoop() {
	defer close(s.eventsCh)

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		messageType, message, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closeCh:
				return
			case s.eventsCh <- eventOrError{err: fmt.Errorf("openairt: read error: %w", err)}:
			}
			return
		}

		// Raw binary frames are model audio (the negotiated output
		// format); normalize them to an audio delta event so downstream
		// code sees a single frame shape.
		if messageType == websocket.BinaryMessage {
			ev := &ServerEvent{Type: EventTypeResponseAudioDelta, Audio: message}
			select {
			case <-s.closeCh:
				return
			case s.eventsCh <- eventOrError{event: ev}:
			}
			continue
		}

		if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
			msgStr := string(message)
			if len(msgStr) > 1000 {
				msgStr = msgStr[:1000] + "..."
			}
			slog.Debug("received message", "len", len(message), "content", msgStr)
		}

		// One unparseable frame is dropped, not fatal; only transport
		// read failures end the event stream.
		event, err := s.parseEvent(message)
		if err != nil {
			slog.Warn("dropping malformed event", "error", err, "len", len(message))
			continue
		}

		if event.Type == EventTypeSessionCreated && event.Session != nil {
			s.mu.Lock()
			s.sessionID = event.Session.ID
			s.mu.Unlock()
		}

		select {
		case <-s.closeCh:
			return
		case s.eventsCh <- eventOrError{event: event}:
		}
	}
}

// parseEvent parses a raw JSON message into a ServerEvent.
func (s *Session) parseEvent(message []byte) (*ServerEvent, error) {
	var event ServerEvent
	if err := json.Unmarshal(message, &event); err != nil {
		return nil, fmt.Errorf("openairt: parse error: %w", err)
	}

	event.Raw = message

	// For JSON audio deltas the "delta" field carries base64 audio.
	if event.Type == EventTypeResponseAudioDelta && event.Delta != "" {
		event.AudioBase64 = event.Delta
	}

	return &event, nil
}
