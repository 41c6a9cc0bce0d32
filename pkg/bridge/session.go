package bridge

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/telvox/callbridge/pkg/mediastream"
	"github.com/telvox/callbridge/pkg/openairt"
)

// CallPhase is the lifecycle phase of one bridged call.
type CallPhase int32

const (
	PhaseConnecting CallPhase = iota
	PhaseGreeting
	PhaseStreaming
	PhaseDraining
	PhaseClosed
)

func (p CallPhase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseGreeting:
		return "greeting"
	case PhaseStreaming:
		return "streaming"
	case PhaseDraining:
		return "draining"
	case PhaseClosed:
		return "closed"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// Config tunes the bridge. Shared across calls, read-only once the service
// starts; zero values fall back to defaults.
type Config struct {
	// Model is the realtime model to dial.
	Model string

	// Voice selects the model's spoken voice.
	Voice string

	// Greeting is spoken verbatim when the call connects, unless the
	// call-scoped configuration overrides it.
	Greeting string

	// Instructions is the default system prompt, unless the call-scoped
	// configuration overrides it.
	Instructions string

	// VADThreshold, VADPrefixPaddingMs and VADSilenceDurationMs tune
	// server-side turn detection. The defaults are deliberately
	// conservative for an 8kHz PSTN line with echo.
	VADThreshold         float64
	VADPrefixPaddingMs   int
	VADSilenceDurationMs int

	// Temperature for model responses.
	Temperature float64

	// SettleDelay is the pause between session.update and the greeting
	// request, letting VAD settle before the model starts speaking.
	SettleDelay time.Duration

	// StartFrameTimeout bounds the wait for the telephony start frame.
	StartFrameTimeout time.Duration
}

// Defaults.
const (
	defaultGreeting = "नमस्ते! मैं आपका AI सहायक हूँ। बताइए, मैं आपकी किस प्रकार सहायता कर सकता हूँ?"

	defaultInstructions = "You are a friendly, Hindi-speaking voice assistant " +
		"on a phone call. Keep answers short and conversational. When the " +
		"caller wants to end the conversation, call the terminate_call function."

	defaultVADThreshold         = 0.7
	defaultVADPrefixPaddingMs   = 2500
	defaultVADSilenceDurationMs = 800
	defaultTemperature          = 0.8
	defaultSettleDelay          = 150 * time.Millisecond
	defaultStartFrameTimeout    = 10 * time.Second
)

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = openairt.ModelGPTRealtime
	}
	if c.Voice == "" {
		c.Voice = openairt.VoiceAsh
	}
	if c.Greeting == "" {
		c.Greeting = defaultGreeting
	}
	if c.Instructions == "" {
		c.Instructions = defaultInstructions
	}
	if c.VADThreshold == 0 {
		c.VADThreshold = defaultVADThreshold
	}
	if c.VADPrefixPaddingMs == 0 {
		c.VADPrefixPaddingMs = defaultVADPrefixPaddingMs
	}
	if c.VADSilenceDurationMs == 0 {
		c.VADSilenceDurationMs = defaultVADSilenceDurationMs
	}
	if c.Temperature == 0 {
		c.Temperature = defaultTemperature
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = defaultSettleDelay
	}
	if c.StartFrameTimeout == 0 {
		c.StartFrameTimeout = defaultStartFrameTimeout
	}
	return c
}

// modelStream is the full model leg: commands plus the event feed.
// Satisfied by *openairt.Session.
type modelStream interface {
	modelSession
	Events() iter.Seq2[*openairt.ServerEvent, error]
}

// Session bridges one call. It owns both legs for the call's lifetime and
// is discarded when either closes; nothing is shared across calls.
type Session struct {
	cfg       Config
	telephony telephonyLeg
	model     modelStream
	gate      *responseGate
	det       *detector
	log       *slog.Logger

	greeting     string
	instructions string

	phase     atomic.Int32
	closeOnce sync.Once
}

// NewSession binds an accepted telephony connection and a dialed model
// session into one call. greeting and instructions come from the
// call-scoped configuration; empty strings take the Config defaults.
func NewSession(cfg Config, telephony telephonyLeg, model modelStream, greeting, instructions string, log *slog.Logger) *Session {
	cfg = cfg.withDefaults()
	if log == nil {
		log = slog.Default()
	}
	if greeting == "" {
		greeting = cfg.Greeting
	}
	if instructions == "" {
		instructions = cfg.Instructions
	}

	gate := newResponseGate(model, telephony, log)
	return &Session{
		cfg:          cfg,
		telephony:    telephony,
		model:        model,
		gate:         gate,
		det:          newDetector(gate, log),
		log:          log,
		greeting:     greeting,
		instructions: instructions,
	}
}

// Phase returns the call's current lifecycle phase.
func (s *Session) Phase() CallPhase {
	return CallPhase(s.phase.Load())
}

func (s *Session) setPhase(p CallPhase) {
	s.phase.Store(int32(p))
}

// SetStreamID records the telephony stream identifier when it is already
// known from the start frame the handler consumed.
func (s *Session) SetStreamID(id string) {
	if id != "" {
		s.gate.SetStreamID(id)
	}
}

// Run configures the model session, speaks the greeting and relays frames
// in both directions until the call ends. It returns once both legs are
// closed.
func (s *Session) Run(ctx context.Context) error {
	defer s.setPhase(PhaseClosed)
	defer s.closeBoth()

	s.setPhase(PhaseGreeting)
	if err := s.model.UpdateSession(s.sessionConfig()); err != nil {
		return fmt.Errorf("bridge: session update: %w", err)
	}

	select {
	case <-time.After(s.cfg.SettleDelay):
	case <-ctx.Done():
		return ctx.Err()
	}
	s.gate.RequestResponse(verbatimPrefix + s.greeting)

	s.setPhase(PhaseStreaming)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.relayTelephony()
	}()
	s.relayModel()

	s.closeBoth()
	wg.Wait()
	return nil
}

// sessionConfig builds the one session.update sent during greeting.
func (s *Session) sessionConfig() *openairt.SessionConfig {
	temp := s.cfg.Temperature
	return &openairt.SessionConfig{
		Modalities:        []string{openairt.ModalityText, openairt.ModalityAudio},
		Instructions:      s.instructions,
		Voice:             s.cfg.Voice,
		InputAudioFormat:  openairt.AudioFormatG711ULaw,
		OutputAudioFormat: openairt.AudioFormatG711ULaw,
		InputAudioTranscription: &openairt.TranscriptionConfig{
			Model: "whisper-1",
		},
		TurnDetection: &openairt.TurnDetection{
			Type:              openairt.VADServerVAD,
			Threshold:         s.cfg.VADThreshold,
			PrefixPaddingMs:   s.cfg.VADPrefixPaddingMs,
			SilenceDurationMs: s.cfg.VADSilenceDurationMs,
		},
		Tools: []openairt.Tool{
			{
				Type:        "function",
				Name:        TerminateFunction,
				Description: "Terminate the phone call when the user wants to end the conversation",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"reason": map[string]interface{}{
							"type":        "string",
							"description": "Reason for terminating the call",
						},
					},
					"required": []string{"reason"},
				},
			},
		},
		Temperature: &temp,
	}
}

// relayTelephony pumps caller audio into the model. One bad frame is
// dropped and the loop continues; a read error means the peer went away
// and the call drains.
func (s *Session) relayTelephony() {
	defer s.closeBoth()

	for {
		ev, err := s.telephony.ReadEvent()
		if errors.Is(err, mediastream.ErrBadFrame) {
			s.log.Debug("dropping bad telephony frame", "error", err)
			continue
		}
		if err != nil {
			s.log.Debug("telephony read ended", "error", err)
			return
		}
		switch ev.Event {
		case mediastream.EventMedia:
			payload, ok := mediastream.AppendPayload(ev)
			if !ok {
				continue
			}
			if err := s.model.AppendAudioBase64(payload); err != nil {
				s.log.Warn("append audio failed", "error", err)
			}
		case mediastream.EventStart:
			if ev.Start != nil {
				s.gate.SetStreamID(ev.Start.StreamID)
			}
		case mediastream.EventStop:
			s.log.Info("telephony stop received")
			if err := s.model.CommitInput(); err != nil {
				s.log.Warn("final commit failed", "error", err)
			}
			return
		default:
			s.log.Debug("ignoring telephony event", "event", ev.Event)
		}
	}
}

// relayModel pumps model events toward the telephony leg and feeds the
// arbitration gate and the termination detector. Expected error events keep
// the loop running; only a transport-level failure or the end of the event
// stream ends the call.
func (s *Session) relayModel() {
	defer s.closeBoth()

	for ev, err := range s.model.Events() {
		if err != nil {
			s.log.Debug("model read ended", "error", err)
			return
		}
		switch ev.Type {
		case openairt.EventTypeResponseAudioDelta:
			var out mediastream.PlayAudioEvent
			switch {
			case len(ev.Audio) > 0:
				out = mediastream.PlayAudio(ev.Audio)
			case ev.AudioBase64 != "":
				out = mediastream.PlayAudioBase64(ev.AudioBase64)
			default:
				continue
			}
			if err := s.telephony.WriteJSON(out); err != nil {
				s.log.Warn("play audio failed", "error", err)
			}

		case openairt.EventTypeResponseCreated:
			s.gate.OnResponseStarted()

		case openairt.EventTypeResponseDone:
			s.gate.OnResponseEnded()
			s.det.OnResponseDone(ev.Response)

		case openairt.EventTypeInputAudioBufferSpeechStarted:
			s.gate.OnUserSpeechStarted()

		case openairt.EventTypeInputAudioBufferSpeechStopped:
			s.gate.OnUserSpeechStopped()

		case openairt.EventTypeInputTranscriptionCompleted:
			if s.det.OnUserUtterance(ev.Transcript) {
				s.log.Info("terminating call on confirmed request")
				return
			}

		case openairt.EventTypeError:
			if ev.Err == nil {
				continue
			}
			if ev.Err.Code == openairt.ErrCodeActiveResponseExists {
				s.gate.OnResponseRejected(ev.Err.Code)
				continue
			}
			s.log.Warn("model error event",
				"code", ev.Err.Code, "message", ev.Err.Message)
		}
	}
}

// closeBoth drains the call: model leg first, then telephony, each guarded
// so a failure closing one never prevents closing the other. Both closes
// are idempotent; close-path errors are logged and discarded.
func (s *Session) closeBoth() {
	s.closeOnce.Do(func() {
		s.setPhase(PhaseDraining)
		if err := s.model.Close(); err != nil {
			s.log.Debug("model close", "error", err)
		}
		if err := s.telephony.Close(); err != nil {
			s.log.Debug("telephony close", "error", err)
		}
	})
}
