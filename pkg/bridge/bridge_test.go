package bridge

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/telvox/callbridge/pkg/mediastream"
	"github.com/telvox/callbridge/pkg/openairt"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recorder collects the ordered command stream observed by both fake legs.
type recorder struct {
	mu  sync.Mutex
	ops []string
}

func (r *recorder) add(op string) {
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.ops)
}

func (r *recorder) count(prefix string) int {
	n := 0
	for _, op := range r.snapshot() {
		if strings.HasPrefix(op, prefix) {
			n++
		}
	}
	return n
}

// index returns the position of the first op with the given prefix, or -1.
func (r *recorder) index(prefix string) int {
	for i, op := range r.snapshot() {
		if strings.HasPrefix(op, prefix) {
			return i
		}
	}
	return -1
}

func (r *recorder) waitFor(t *testing.T, prefix string) {
	t.Helper()
	waitUntil(t, fmt.Sprintf("op %q", prefix), func() bool {
		return r.index(prefix) >= 0
	})
}

func (r *recorder) waitForCount(t *testing.T, prefix string, n int) {
	t.Helper()
	waitUntil(t, fmt.Sprintf("%d ops %q", n, prefix), func() bool {
		return r.count(prefix) >= n
	})
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// fakeModel implements modelStream. Events pushed into events drive the
// model relay loop; closing the session or the channel ends it.
type fakeModel struct {
	rec        *recorder
	updateErr  error
	createErr  error
	createGate chan struct{}

	events    chan *openairt.ServerEvent
	closeCh   chan struct{}
	closeOnce sync.Once
	closes    atomic.Int32
}

func newFakeModel(rec *recorder) *fakeModel {
	return &fakeModel{
		rec:     rec,
		events:  make(chan *openairt.ServerEvent, 16),
		closeCh: make(chan struct{}),
	}
}

func (m *fakeModel) UpdateSession(*openairt.SessionConfig) error {
	m.rec.add("session.update")
	return m.updateErr
}

func (m *fakeModel) AppendAudioBase64(p string) error {
	m.rec.add("append:" + p)
	return nil
}

func (m *fakeModel) CommitInput() error {
	m.rec.add("commit")
	return nil
}

func (m *fakeModel) CreateResponse(opts *openairt.ResponseCreateOptions) error {
	instructions := ""
	if opts != nil {
		instructions = opts.Instructions
	}
	m.rec.add("create:" + instructions)
	if m.createGate != nil {
		<-m.createGate
	}
	return m.createErr
}

func (m *fakeModel) CancelResponse() error {
	m.rec.add("cancel")
	return nil
}

func (m *fakeModel) Close() error {
	m.closes.Add(1)
	m.closeOnce.Do(func() {
		m.rec.add("model.close")
		close(m.closeCh)
	})
	return nil
}

func (m *fakeModel) Events() iter.Seq2[*openairt.ServerEvent, error] {
	return func(yield func(*openairt.ServerEvent, error) bool) {
		for {
			select {
			case <-m.closeCh:
				return
			case ev, ok := <-m.events:
				if !ok {
					return
				}
				if !yield(ev, nil) {
					return
				}
			}
		}
	}
}

// fakeTelephony implements telephonyLeg. Frames pushed into frames drive
// the telephony relay loop.
type fakeTelephony struct {
	rec       *recorder
	frames    chan *mediastream.Event
	closeCh   chan struct{}
	closeOnce sync.Once
	closes    atomic.Int32
}

func newFakeTelephony(rec *recorder) *fakeTelephony {
	return &fakeTelephony{
		rec:     rec,
		frames:  make(chan *mediastream.Event, 16),
		closeCh: make(chan struct{}),
	}
}

func (f *fakeTelephony) ReadEvent() (*mediastream.Event, error) {
	select {
	case <-f.closeCh:
		return nil, errors.New("telephony: closed")
	case ev, ok := <-f.frames:
		if !ok {
			return nil, errors.New("telephony: peer closed")
		}
		return ev, nil
	}
}

func (f *fakeTelephony) WriteJSON(v any) error {
	switch ev := v.(type) {
	case mediastream.PlayAudioEvent:
		f.rec.add("playAudio:" + ev.Media.Payload)
	case mediastream.ClearAudioEvent:
		f.rec.add("clearAudio:" + ev.StreamID)
	default:
		f.rec.add(fmt.Sprintf("write:%T", v))
	}
	return nil
}

func (f *fakeTelephony) Close() error {
	f.closes.Add(1)
	f.closeOnce.Do(func() {
		f.rec.add("telephony.close")
		close(f.closeCh)
	})
	return nil
}
