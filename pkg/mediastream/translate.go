package mediastream

import "encoding/base64"

// AppendPayload extracts the base64 audio payload of a media event for
// forwarding to the model session. ok is false when the event is not a media
// event or carries no payload; the caller skips the frame.
func AppendPayload(ev *Event) (payload string, ok bool) {
	if ev == nil || ev.Event != EventMedia || ev.Media == nil || ev.Media.Payload == "" {
		return "", false
	}
	return ev.Media.Payload, true
}

// PlayAudio wraps raw μ-law bytes in a playAudio envelope.
func PlayAudio(audio []byte) PlayAudioEvent {
	return PlayAudioBase64(base64.StdEncoding.EncodeToString(audio))
}

// PlayAudioBase64 wraps base64 μ-law audio in a playAudio envelope. The model
// transport may deliver audio either as a binary frame or as a JSON delta with
// an inline base64 field; both shapes normalize to this one envelope.
func PlayAudioBase64(payload string) PlayAudioEvent {
	return PlayAudioEvent{
		Event: EventPlayAudio,
		Media: PlayMedia{
			ContentType: ContentTypeMuLaw,
			SampleRate:  SampleRate,
			Payload:     payload,
		},
	}
}

// ClearAudio builds a clearAudio event targeting the given stream.
func ClearAudio(streamID string) ClearAudioEvent {
	return ClearAudioEvent{Event: EventClearAudio, StreamID: streamID}
}
