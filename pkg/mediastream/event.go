// Package mediastream implements the framed JSON protocol spoken by the
// telephony media-stream websocket: inbound start/media/stop events carrying
// base64 μ-law audio, and outbound playAudio/clearAudio events.
//
// The package is pure framing: it parses inbound frames and builds outbound
// envelopes. It holds no connection state beyond the thin Conn wrapper and
// never blocks.
package mediastream

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrBadFrame marks a frame that could not be parsed. The relay loop drops
// the frame and keeps reading; it is not a connection failure.
var ErrBadFrame = errors.New("mediastream: bad frame")

// Inbound event names.
const (
	EventStart = "start"
	EventMedia = "media"
	EventStop  = "stop"
)

// Outbound event names.
const (
	EventPlayAudio  = "playAudio"
	EventClearAudio = "clearAudio"
)

// Audio shape of the telephony leg. μ-law at 8 kHz, both directions.
const (
	ContentTypeMuLaw = "audio/x-mulaw"
	SampleRate       = 8000
)

// StartInfo is the payload of a start event.
type StartInfo struct {
	// CallID is the external call identifier assigned by the telephony
	// provider. It keys the call-scoped configuration lookup.
	CallID string `json:"callId,omitzero"`

	// StreamID identifies the media stream. clearAudio events must carry
	// it back.
	StreamID string `json:"streamId,omitzero"`
}

// MediaPayload is the payload of a media event.
type MediaPayload struct {
	// Payload is base64-encoded μ-law audio.
	Payload string `json:"payload,omitzero"`
}

// Event is one inbound frame from the telephony leg.
type Event struct {
	Event string        `json:"event"`
	Start *StartInfo    `json:"start,omitzero"`
	Media *MediaPayload `json:"media,omitzero"`
}

// ParseEvent decodes a single inbound frame. A frame that is not valid JSON
// or has no event name is an error; the relay loop drops it and continues.
func ParseEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	if ev.Event == "" {
		return nil, fmt.Errorf("%w: no event name", ErrBadFrame)
	}
	return &ev, nil
}

// PlayMedia is the media body of a playAudio event.
type PlayMedia struct {
	ContentType string `json:"contentType"`
	SampleRate  int    `json:"sampleRate"`
	Payload     string `json:"payload"`
}

// PlayAudioEvent queues audio for playback on the telephony leg.
type PlayAudioEvent struct {
	Event string    `json:"event"`
	Media PlayMedia `json:"media"`
}

// ClearAudioEvent flushes audio already queued for playback. StreamID is
// required by the telephony provider (camelCase on the wire).
type ClearAudioEvent struct {
	Event    string `json:"event"`
	StreamID string `json:"streamId"`
}
