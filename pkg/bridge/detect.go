package bridge

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/telvox/callbridge/pkg/openairt"
)

// TerminateFunction is the tool the model invokes when the caller asks to
// end the conversation. Declared with a required free-text reason.
const TerminateFunction = "terminate_call"

// verbatimPrefix makes the model speak the following sentence word for
// word instead of paraphrasing it.
const verbatimPrefix = "कृपया इस वाक्य को ज्यों का त्यों बोलें: "

// defaultConfirmQuestion is spoken when end-intent is detected. The call
// is only closed after the caller answers it affirmatively.
const defaultConfirmQuestion = "क्या आप कॉल समाप्त करना चाहेंगे? कृपया हाँ या नहीं में उत्तर दें।"

// endKeywords mark a response transcript as probable end-intent. Matching
// is word-bounded and case-insensitive; it is approximate by construction
// (quoted or reported speech can misfire), which is why a hit only leads
// to a confirmation question, never straight to termination.
var endKeywords = []string{
	"goodbye", "bye", "hangup", "hang up", "disconnect",
	"अलविदा", "फिर मिलेंगे",
}

// affirmatives confirm termination. A reply containing any negative is
// classified as declining regardless of other words.
var (
	affirmatives = []string{
		"yes", "yeah", "yep", "sure", "ok", "okay",
		"haan", "han", "ji", "हाँ", "हां", "जी", "बिल्कुल",
	}
	negatives = []string{
		"no", "nope", "not", "don't", "dont",
		"nahi", "nahin", "नहीं", "ना", "मत",
	}
)

// detector inspects completed responses for call-end intent and drives the
// confirmation round-trip. It never terminates a call without one explicit
// affirmative reply to one explicit confirmation question.
type detector struct {
	gate *responseGate
	log  *slog.Logger

	// confirmInstructions is the literal response.create instruction used
	// to ask the confirmation question.
	confirmInstructions string
}

func newDetector(gate *responseGate, log *slog.Logger) *detector {
	return &detector{
		gate:                gate,
		log:                 log,
		confirmInstructions: verbatimPrefix + defaultConfirmQuestion,
	}
}

// OnResponseDone evaluates a completed response. On the first end-intent
// signal it arms the confirmation flag and asks the question; while the
// flag is armed further signals are ignored (the model is already asking).
func (d *detector) OnResponseDone(resp *openairt.ResponseResource) {
	if resp == nil {
		return
	}
	source, ok := endIntent(resp)
	if !ok {
		return
	}
	if !d.gate.beginConfirmation() {
		return
	}
	d.log.Info("end intent detected, asking for confirmation", "source", source)
	d.gate.RequestResponse(d.confirmInstructions)
}

// OnUserUtterance classifies one recognized caller utterance. While a
// confirmation is in progress the utterance answers only the closing
// question; any reply that is not clearly affirmative keeps the call open.
// Outside a confirmation the utterance is ignored entirely, so a stray
// "no" to an unrelated question never reads as end-intent. Returns true
// when the call should terminate.
func (d *detector) OnUserUtterance(transcript string) bool {
	if !d.gate.resolveConfirmation() {
		return false
	}
	if isAffirmative(transcript) {
		d.log.Info("termination confirmed", "transcript", transcript)
		return true
	}
	d.log.Info("termination declined, conversation continues", "transcript", transcript)
	return false
}

// endIntent reports whether a completed response signals call-end intent,
// either structurally (terminate_call invocation) or heuristically
// (transcript keyword).
func endIntent(resp *openairt.ResponseResource) (source string, ok bool) {
	for _, item := range resp.Output {
		if item.Type == "function_call" && item.Name == TerminateFunction {
			return "function_call", true
		}
	}
	if containsAnyWord(responseTranscript(resp), endKeywords) {
		return "transcript", true
	}
	return "", false
}

// responseTranscript collects the spoken text of a response from the
// response-level transcript and every audio content part.
func responseTranscript(resp *openairt.ResponseResource) string {
	var b strings.Builder
	b.WriteString(resp.Transcript)
	for _, item := range resp.Output {
		for _, part := range item.Content {
			if part.Transcript != "" {
				b.WriteByte(' ')
				b.WriteString(part.Transcript)
			} else if part.Text != "" {
				b.WriteByte(' ')
				b.WriteString(part.Text)
			}
		}
	}
	return b.String()
}

func isAffirmative(transcript string) bool {
	if containsAnyWord(transcript, negatives) {
		return false
	}
	return containsAnyWord(transcript, affirmatives)
}

// containsAnyWord reports whether any keyword appears in text on word
// boundaries, case-insensitively. Multi-word keywords match as a phrase.
func containsAnyWord(text string, keywords []string) bool {
	norm := " " + normalizeWords(text) + " "
	for _, kw := range keywords {
		if strings.Contains(norm, " "+normalizeWords(kw)+" ") {
			return true
		}
	}
	return false
}

// normalizeWords lowercases text and collapses everything that is not part
// of a word into single spaces. Combining marks stay: Devanagari vowel
// signs are marks, not letters.
func normalizeWords(text string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
	return strings.Join(strings.Fields(mapped), " ")
}
