package mediastream

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		want    string
		wantErr bool
	}{
		{"start", `{"event":"start","start":{"callId":"c-1","streamId":"s-1"}}`, EventStart, false},
		{"media", `{"event":"media","media":{"payload":"AAAA"}}`, EventMedia, false},
		{"stop", `{"event":"stop"}`, EventStop, false},
		{"unknown event kept", `{"event":"dtmf"}`, "dtmf", false},
		{"bad json", `{"event":`, "", true},
		{"no event name", `{"media":{"payload":"AAAA"}}`, "", true},
	}

	for _, tc := range tests {
		ev, err := ParseEvent([]byte(tc.frame))
		if tc.wantErr {
			if err == nil {
				t.Errorf("%s: ParseEvent() error = nil; want error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: ParseEvent() error = %v", tc.name, err)
			continue
		}
		if ev.Event != tc.want {
			t.Errorf("%s: ParseEvent().Event = %q; want %q", tc.name, ev.Event, tc.want)
		}
	}
}

func TestParseEvent_BadFrameSentinel(t *testing.T) {
	for _, frame := range []string{`{"event":`, `{}`, `[]`} {
		_, err := ParseEvent([]byte(frame))
		if !errors.Is(err, ErrBadFrame) {
			t.Errorf("ParseEvent(%q) error = %v; want ErrBadFrame", frame, err)
		}
	}
}

func TestParseEvent_StartFields(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"event":"start","start":{"callId":"call-42","streamId":"stream-7"}}`))
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	if ev.Start == nil {
		t.Fatal("ParseEvent().Start = nil")
	}
	if ev.Start.CallID != "call-42" {
		t.Errorf("CallID = %q; want %q", ev.Start.CallID, "call-42")
	}
	if ev.Start.StreamID != "stream-7" {
		t.Errorf("StreamID = %q; want %q", ev.Start.StreamID, "stream-7")
	}
}

func TestAppendPayload(t *testing.T) {
	tests := []struct {
		name string
		ev   *Event
		want string
		ok   bool
	}{
		{"media with payload", &Event{Event: EventMedia, Media: &MediaPayload{Payload: "dGVzdA=="}}, "dGVzdA==", true},
		{"media without body", &Event{Event: EventMedia}, "", false},
		{"media empty payload", &Event{Event: EventMedia, Media: &MediaPayload{}}, "", false},
		{"not a media event", &Event{Event: EventStart}, "", false},
		{"nil event", nil, "", false},
	}

	for _, tc := range tests {
		got, ok := AppendPayload(tc.ev)
		if ok != tc.ok || got != tc.want {
			t.Errorf("%s: AppendPayload() = (%q, %v); want (%q, %v)", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

// Encoding arbitrary bytes through PlayAudio and decoding the payload field
// must yield the original bytes.
func TestPlayAudio_RoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x00},
		{0xff, 0x7f, 0x00, 0x80},
		make([]byte, 1600), // one 200ms μ-law chunk
	}
	for i := range payloads[3] {
		payloads[3][i] = byte(i % 251)
	}

	for _, in := range payloads {
		ev := PlayAudio(in)
		if ev.Event != EventPlayAudio {
			t.Fatalf("PlayAudio().Event = %q; want %q", ev.Event, EventPlayAudio)
		}
		if ev.Media.ContentType != ContentTypeMuLaw || ev.Media.SampleRate != SampleRate {
			t.Fatalf("PlayAudio() media = %+v; want %s @%d", ev.Media, ContentTypeMuLaw, SampleRate)
		}
		out, err := base64.StdEncoding.DecodeString(ev.Media.Payload)
		if err != nil {
			t.Fatalf("payload decode error: %v", err)
		}
		if string(out) != string(in) {
			t.Errorf("round trip mismatch: %d bytes in, %d bytes out", len(in), len(out))
		}
	}
}

func TestPlayAudioBase64_SameEnvelopeAsBinary(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5}
	b64 := base64.StdEncoding.EncodeToString(raw)

	fromRaw, _ := json.Marshal(PlayAudio(raw))
	fromB64, _ := json.Marshal(PlayAudioBase64(b64))
	if string(fromRaw) != string(fromB64) {
		t.Errorf("binary and base64 inputs produced different envelopes:\n%s\n%s", fromRaw, fromB64)
	}
}

func TestClearAudio(t *testing.T) {
	data, err := json.Marshal(ClearAudio("stream-9"))
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	want := `{"event":"clearAudio","streamId":"stream-9"}`
	if string(data) != want {
		t.Errorf("ClearAudio JSON = %s; want %s", data, want)
	}
}
