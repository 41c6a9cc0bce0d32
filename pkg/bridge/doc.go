// Package bridge connects one telephony media stream to one realtime speech
// model session and relays audio between them for the lifetime of the call.
//
// A call runs two relay loops side by side: telephony to model (caller audio
// in) and model to telephony (spoken responses out). Between them sits a
// small amount of session-scoped state: the response arbitration gate, which
// decides when the model may begin or cancel a spoken response, and the
// termination detector, which turns "the model said goodbye" into an
// explicit confirmation round-trip before anything is closed.
//
// Handler is the HTTP entry point: it upgrades the telephony websocket,
// reads the start frame, looks up call configuration, dials the model and
// hands both legs to a Session.
package bridge
