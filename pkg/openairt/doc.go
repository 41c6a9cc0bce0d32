// Package openairt provides a websocket client for OpenAI's Realtime API,
// shaped for server-side voice bridging.
//
// # Connecting
//
//	client := openairt.NewClient(apiKey)
//	session, err := client.Connect(ctx, &openairt.ConnectConfig{
//	    Model: openairt.ModelGPTRealtime,
//	})
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
// # Session Configuration
//
// After connecting, configure codecs, voice and turn detection:
//
//	err = session.UpdateSession(&openairt.SessionConfig{
//	    Voice:             openairt.VoiceAsh,
//	    InputAudioFormat:  openairt.AudioFormatG711ULaw,
//	    OutputAudioFormat: openairt.AudioFormatG711ULaw,
//	    Instructions:      "You are a helpful assistant.",
//	    TurnDetection: &openairt.TurnDetection{
//	        Type: openairt.VADServerVAD,
//	    },
//	})
//
// # Audio and Events
//
// Append caller audio with AppendAudioBase64 and consume server events with
// the Events iterator. Audio deltas arrive either as JSON events with a
// base64 delta field or as raw binary frames; both are normalized into a
// ServerEvent with Type EventTypeResponseAudioDelta, so downstream code never
// branches on the transport shape:
//
//	for event, err := range session.Events() {
//	    if err != nil {
//	        return err
//	    }
//	    switch event.Type {
//	    case openairt.EventTypeResponseAudioDelta:
//	        play(event.Audio, event.AudioBase64)
//	    case openairt.EventTypeResponseDone:
//	        onDone(event.Response)
//	    }
//	}
//
// Error events are yielded as events, not iterator errors, so callers can
// inspect error codes (for instance ErrCodeActiveResponseExists) and keep the
// session alive.
package openairt
