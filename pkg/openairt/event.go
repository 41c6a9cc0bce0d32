package openairt

// Client event types (sent from client to server).
const (
	EventTypeSessionUpdate = "session.update"

	EventTypeInputAudioBufferAppend = "input_audio_buffer.append"
	EventTypeInputAudioBufferCommit = "input_audio_buffer.commit"
	EventTypeInputAudioBufferClear  = "input_audio_buffer.clear"

	EventTypeResponseCreate = "response.create"
	EventTypeResponseCancel = "response.cancel"
)

// Server event types (sent from server to client).
const (
	EventTypeError = "error"

	EventTypeSessionCreated = "session.created"
	EventTypeSessionUpdated = "session.updated"

	EventTypeConversationItemCreated = "conversation.item.created"

	// EventTypeInputTranscriptionCompleted carries the transcript of one
	// caller utterance when input audio transcription is enabled.
	EventTypeInputTranscriptionCompleted = "conversation.item.input_audio_transcription.completed"
	EventTypeInputTranscriptionFailed    = "conversation.item.input_audio_transcription.failed"

	EventTypeInputAudioBufferCommitted     = "input_audio_buffer.committed"
	EventTypeInputAudioBufferSpeechStarted = "input_audio_buffer.speech_started"
	EventTypeInputAudioBufferSpeechStopped = "input_audio_buffer.speech_stopped"

	EventTypeResponseCreated          = "response.created"
	EventTypeResponseDone             = "response.done"
	EventTypeResponseOutputItemAdded  = "response.output_item.added"
	EventTypeResponseOutputItemDone   = "response.output_item.done"
	EventTypeResponseContentPartAdded = "response.content_part.added"
	EventTypeResponseContentPartDone  = "response.content_part.done"

	EventTypeResponseAudioDelta = "response.audio.delta"
	EventTypeResponseAudioDone  = "response.audio.done"

	EventTypeResponseAudioTranscriptDelta = "response.audio_transcript.delta"
	EventTypeResponseAudioTranscriptDone  = "response.audio_transcript.done"

	EventTypeResponseFunctionCallArgumentsDone = "response.function_call_arguments.done"
)

// ServerEvent represents one server event received from the Realtime API.
// Binary websocket frames (raw audio) are normalized into a ServerEvent with
// Type EventTypeResponseAudioDelta and Audio populated.
type ServerEvent struct {
	// Type is the event type.
	Type string `json:"type"`

	// EventID is the unique identifier for this event.
	EventID string `json:"event_id,omitzero"`

	// Session contains session information (session.created/updated).
	Session *SessionResource `json:"session,omitzero"`

	// Err contains the error body of an error event.
	Err *EventError `json:"error,omitzero"`

	// Item contains the conversation item (conversation.item.* events).
	Item *OutputItem `json:"item,omitzero"`

	// ItemID is the item identifier (buffer and transcription events).
	ItemID string `json:"item_id,omitzero"`

	// AudioStartMs / AudioEndMs bound detected speech (speech_started,
	// speech_stopped).
	AudioStartMs int `json:"audio_start_ms,omitzero"`
	AudioEndMs   int `json:"audio_end_ms,omitzero"`

	// Transcript is the transcription text
	// (input_audio_transcription.completed, audio_transcript.done).
	Transcript string `json:"transcript,omitzero"`

	// Response contains response information (response.* events).
	Response *ResponseResource `json:"response,omitzero"`

	// ResponseID is the response identifier.
	ResponseID string `json:"response_id,omitzero"`

	// Delta contains incremental text or base64 audio (*.delta events).
	Delta string `json:"delta,omitzero"`

	// Name and Arguments are set on function call events.
	Name      string `json:"name,omitzero"`
	CallID    string `json:"call_id,omitzero"`
	Arguments string `json:"arguments,omitzero"`

	// Audio contains raw audio bytes when the transport delivered a binary
	// frame. Empty for JSON deltas; see AudioBase64.
	Audio []byte `json:"-"`

	// AudioBase64 contains base64 audio lifted from the Delta field of a
	// JSON response.audio.delta event.
	AudioBase64 string `json:"-"`

	// Raw contains the original JSON message, nil for binary frames.
	Raw []byte `json:"-"`
}
