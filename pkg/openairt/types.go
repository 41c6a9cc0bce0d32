package openairt

// Realtime models.
const (
	// ModelGPTRealtime is the current GA realtime model.
	ModelGPTRealtime = "gpt-realtime"
	// ModelGPT4oRealtimePreview is the GPT-4o realtime preview model.
	ModelGPT4oRealtimePreview = "gpt-4o-realtime-preview"
)

// Audio formats supported by the Realtime API.
const (
	// AudioFormatPCM16 is 16-bit PCM audio at 24kHz, mono, little-endian.
	AudioFormatPCM16 = "pcm16"
	// AudioFormatG711ULaw is G.711 μ-law audio at 8kHz.
	AudioFormatG711ULaw = "g711_ulaw"
	// AudioFormatG711ALaw is G.711 A-law audio at 8kHz.
	AudioFormatG711ALaw = "g711_alaw"
)

// Voice options for audio output.
const (
	VoiceAlloy   = "alloy"
	VoiceAsh     = "ash"
	VoiceBallad  = "ballad"
	VoiceCoral   = "coral"
	VoiceEcho    = "echo"
	VoiceSage    = "sage"
	VoiceShimmer = "shimmer"
	VoiceVerse   = "verse"
)

// VAD modes for turn detection.
const (
	// VADServerVAD enables server-side voice activity detection.
	VADServerVAD = "server_vad"
	// VADSemanticVAD enables semantic voice activity detection.
	VADSemanticVAD = "semantic_vad"
)

// Modality types.
const (
	ModalityText  = "text"
	ModalityAudio = "audio"
)

// ConnectConfig contains configuration for establishing a connection.
type ConnectConfig struct {
	// Model is the model ID to use.
	// Default: gpt-realtime
	Model string `json:"model,omitzero"`
}

// SessionConfig contains configuration for updating session parameters.
type SessionConfig struct {
	// Modalities specifies the output modalities.
	// Default: ["text", "audio"]
	Modalities []string `json:"modalities,omitzero"`

	// Instructions is the system prompt.
	Instructions string `json:"instructions,omitzero"`

	// Voice is the voice ID for audio output.
	Voice string `json:"voice,omitzero"`

	// InputAudioFormat specifies the input audio format.
	// Default: pcm16
	InputAudioFormat string `json:"input_audio_format,omitzero"`

	// OutputAudioFormat specifies the output audio format.
	// Default: pcm16
	OutputAudioFormat string `json:"output_audio_format,omitzero"`

	// InputAudioTranscription enables transcription of caller audio.
	// Required when the caller's words must be inspected server-side.
	InputAudioTranscription *TranscriptionConfig `json:"input_audio_transcription,omitzero"`

	// TurnDetection configures voice activity detection.
	TurnDetection *TurnDetection `json:"turn_detection,omitzero"`

	// Tools defines the available functions for the model.
	Tools []Tool `json:"tools,omitzero"`

	// Temperature controls randomness (0.6-1.2).
	// Default: 0.8
	Temperature *float64 `json:"temperature,omitzero"`
}

// TranscriptionConfig configures input audio transcription.
type TranscriptionConfig struct {
	// Model is the transcription model to use.
	// Default: whisper-1
	Model string `json:"model,omitzero"`
}

// TurnDetection configures voice activity detection.
type TurnDetection struct {
	// Type is the VAD mode: "server_vad" or "semantic_vad".
	Type string `json:"type,omitzero"`

	// Threshold is the VAD sensitivity (0.0-1.0). Higher is less
	// sensitive to noise and echo.
	Threshold float64 `json:"threshold,omitzero"`

	// PrefixPaddingMs is the audio included before detected speech (ms).
	PrefixPaddingMs int `json:"prefix_padding_ms,omitzero"`

	// SilenceDurationMs is the trailing silence that marks end of turn (ms).
	SilenceDurationMs int `json:"silence_duration_ms,omitzero"`
}

// Tool defines a function tool available to the model.
type Tool struct {
	// Type is always "function".
	Type string `json:"type"`

	// Name is the function name.
	Name string `json:"name"`

	// Description describes what the function does.
	Description string `json:"description,omitzero"`

	// Parameters is the JSON Schema for the function parameters.
	Parameters map[string]interface{} `json:"parameters,omitzero"`
}

// ResponseCreateOptions contains options for creating a response.
type ResponseCreateOptions struct {
	// Modalities specifies the output modalities for this response.
	Modalities []string `json:"modalities,omitzero"`

	// Instructions override for this response. Used to make the model
	// speak a literal sentence (greeting, confirmation question).
	Instructions string `json:"instructions,omitzero"`

	// Temperature override for this response.
	Temperature *float64 `json:"temperature,omitzero"`
}

// OutputItem is an item in a completed response's output array.
type OutputItem struct {
	ID     string `json:"id,omitzero"`
	Type   string `json:"type,omitzero"` // "message", "function_call"
	Status string `json:"status,omitzero"`
	Role   string `json:"role,omitzero"`

	// Content holds message parts; audio parts carry a transcript.
	Content []ContentPart `json:"content,omitzero"`

	// Name and Arguments are set for function_call items.
	Name      string `json:"name,omitzero"`
	CallID    string `json:"call_id,omitzero"`
	Arguments string `json:"arguments,omitzero"`
}

// ContentPart represents a part of message content.
type ContentPart struct {
	Type       string `json:"type,omitzero"` // "text", "audio"
	Text       string `json:"text,omitzero"`
	Transcript string `json:"transcript,omitzero"`
}

// ResponseResource represents a completed or in-progress response.
type ResponseResource struct {
	ID            string         `json:"id,omitzero"`
	Status        string         `json:"status,omitzero"` // "in_progress", "completed", "cancelled", "incomplete", "failed"
	StatusDetails *StatusDetails `json:"status_details,omitzero"`
	Output        []OutputItem   `json:"output,omitzero"`

	// Transcript is the spoken transcript of the whole response when the
	// transport provides it at response level.
	Transcript string `json:"transcript,omitzero"`
}

// StatusDetails contains details about the response status.
type StatusDetails struct {
	Type   string      `json:"type,omitzero"`
	Reason string      `json:"reason,omitzero"`
	Error  *EventError `json:"error,omitzero"`
}

// SessionResource represents the session state returned by the server.
type SessionResource struct {
	ID                string `json:"id,omitzero"`
	Model             string `json:"model,omitzero"`
	Voice             string `json:"voice,omitzero"`
	InputAudioFormat  string `json:"input_audio_format,omitzero"`
	OutputAudioFormat string `json:"output_audio_format,omitzero"`
}
