package bridge

import (
	"log/slog"
	"sync"
	"time"

	"github.com/telvox/callbridge/pkg/mediastream"
	"github.com/telvox/callbridge/pkg/openairt"
)

// debounceWindow suppresses duplicate end-of-turn events. The model
// transport occasionally fires speech_stopped twice for one utterance;
// a second event inside the window is the same turn, not a new one.
const debounceWindow = 350 * time.Millisecond

// modelSession is the command surface of the model leg. Satisfied by
// *openairt.Session.
type modelSession interface {
	UpdateSession(*openairt.SessionConfig) error
	AppendAudioBase64(string) error
	CommitInput() error
	CreateResponse(*openairt.ResponseCreateOptions) error
	CancelResponse() error
	Close() error
}

// telephonyLeg is the telephony side of the call. Satisfied by
// *mediastream.Conn.
type telephonyLeg interface {
	ReadEvent() (*mediastream.Event, error)
	WriteJSON(any) error
	Close() error
}

// responseGate arbitrates spoken responses for one call. It tracks whether
// a response is active (the model is speaking) or pending (requested,
// awaiting the model's ack) and refuses to request a new one while either
// holds. The termination confirmation flag lives behind the same lock so
// every session-scoped read-modify-write shares one critical section.
//
// The lock protects only the check-and-set; it is never held across a
// read or write on either leg.
type responseGate struct {
	model     modelSession
	telephony telephonyLeg
	log       *slog.Logger
	now       func() time.Time

	mu             sync.Mutex
	active         bool
	pending        bool
	streamID       string
	lastSpeechStop time.Time
	awaitingEnd    bool
}

func newResponseGate(model modelSession, telephony telephonyLeg, log *slog.Logger) *responseGate {
	return &responseGate{
		model:     model,
		telephony: telephony,
		log:       log,
		now:       time.Now,
	}
}

// SetStreamID records the telephony stream identifier from the start event.
// Barge-in clearAudio events must target it.
func (g *responseGate) SetStreamID(id string) {
	g.mu.Lock()
	g.streamID = id
	g.mu.Unlock()
}

// RequestResponse asks the model to begin a spoken response, optionally
// carrying literal instructions. No-op while a response is active or
// pending: two near-simultaneous triggers would otherwise both send
// response.create and the second would be rejected with
// conversation_already_has_active_response. The lock covers only the
// check-and-set of pending; the websocket write happens after release, so
// the gate never blocks on I/O.
func (g *responseGate) RequestResponse(instructions string) {
	g.mu.Lock()
	if g.active || g.pending {
		active, pending := g.active, g.pending
		g.mu.Unlock()
		g.log.Debug("response in flight, skipping request",
			"active", active, "pending", pending)
		return
	}
	g.pending = true
	g.mu.Unlock()

	var opts *openairt.ResponseCreateOptions
	if instructions != "" {
		opts = &openairt.ResponseCreateOptions{Instructions: instructions}
	}
	if err := g.model.CreateResponse(opts); err != nil {
		g.mu.Lock()
		g.pending = false
		g.mu.Unlock()
		g.log.Warn("create response failed", "error", err)
	}
}

// OnResponseStarted marks the model as speaking. Pending stays set until
// the paired response.done arrives.
func (g *responseGate) OnResponseStarted() {
	g.mu.Lock()
	g.active = true
	g.mu.Unlock()
}

// OnResponseEnded returns the gate to idle.
func (g *responseGate) OnResponseEnded() {
	g.mu.Lock()
	g.active = false
	g.pending = false
	g.mu.Unlock()
}

// OnResponseRejected handles an error event for a rejected create. Only the
// active-response-exists code clears pending; anything else is logged by the
// relay loop and changes nothing here.
func (g *responseGate) OnResponseRejected(code string) {
	if code != openairt.ErrCodeActiveResponseExists {
		return
	}
	g.mu.Lock()
	g.pending = false
	g.mu.Unlock()
	g.log.Info("response request rejected, already active")
}

// OnUserSpeechStarted handles barge-in. Audio already queued on the
// telephony leg is flushed first so playback stops immediately; the cancel
// toward the model is best-effort and may race a response that is already
// ending, in which case response.done restores idle anyway.
func (g *responseGate) OnUserSpeechStarted() {
	g.mu.Lock()
	streamID := g.streamID
	inFlight := g.active || g.pending
	g.mu.Unlock()

	if streamID != "" {
		if err := g.telephony.WriteJSON(mediastream.ClearAudio(streamID)); err != nil {
			g.log.Warn("clear audio failed", "error", err)
		}
	}
	if inFlight {
		if err := g.model.CancelResponse(); err != nil {
			g.log.Warn("cancel response failed", "error", err)
		}
	}
}

// OnUserSpeechStopped requests a conversational response for the finished
// turn, unless a duplicate event lands inside the debounce window.
func (g *responseGate) OnUserSpeechStopped() {
	g.mu.Lock()
	now := g.now()
	if !g.lastSpeechStop.IsZero() && now.Sub(g.lastSpeechStop) < debounceWindow {
		g.mu.Unlock()
		g.log.Debug("duplicate speech stop suppressed")
		return
	}
	g.lastSpeechStop = now
	g.mu.Unlock()

	g.RequestResponse("")
}

// beginConfirmation arms the termination confirmation flag. Returns false
// when a confirmation is already in progress, so repeated end-intent does
// not re-trigger the question.
func (g *responseGate) beginConfirmation() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.awaitingEnd {
		return false
	}
	g.awaitingEnd = true
	return true
}

// resolveConfirmation clears the confirmation flag and reports whether it
// was set. The caller classifies the user's reply; either way the flag is
// spent on exactly one utterance.
func (g *responseGate) resolveConfirmation() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	was := g.awaitingEnd
	g.awaitingEnd = false
	return was
}
