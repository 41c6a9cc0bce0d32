package callcfg

import (
	"context"
	"testing"

	"github.com/telvox/callbridge/pkg/kv"
)

func TestLookupMissing(t *testing.T) {
	s := NewStore(kv.NewMemory())
	ctx := context.Background()

	cfg, err := s.Lookup(ctx, "no-such-call")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if cfg != (Config{}) {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLookupEmptyID(t *testing.T) {
	s := NewStore(kv.NewMemory())

	cfg, err := s.Lookup(context.Background(), "")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if cfg != (Config{}) {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestPutLookup(t *testing.T) {
	s := NewStore(kv.NewMemory())
	ctx := context.Background()

	want := Config{
		Greeting:     "नमस्ते, मैं आपकी सहायता के लिए हूँ।",
		Instructions: "The caller ordered part #4471 last week.",
	}
	if err := s.Put(ctx, "c7f3", want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Lookup(ctx, "c7f3")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != want {
		t.Errorf("Lookup = %+v, want %+v", got, want)
	}
}

func TestPutEmptyID(t *testing.T) {
	s := NewStore(kv.NewMemory())
	if err := s.Put(context.Background(), "", Config{Greeting: "hi"}); err == nil {
		t.Error("expected error for empty call ID")
	}
}

func TestDelete(t *testing.T) {
	s := NewStore(kv.NewMemory())
	ctx := context.Background()

	if err := s.Put(ctx, "c1", Config{Greeting: "hello"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete(ctx, "c1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	cfg, err := s.Lookup(ctx, "c1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if cfg != (Config{}) {
		t.Errorf("expected zero config after delete, got %+v", cfg)
	}
}

func TestWireFormat(t *testing.T) {
	// Writers outside this service produce these field names.
	mem := kv.NewMemory()
	ctx := context.Background()
	err := mem.Set(ctx, kv.Key{"call_config", "legacy"},
		[]byte(`{"welcome_message":"hello","extracted_file_text":"context"}`))
	if err != nil {
		t.Fatalf("Set: %v", err)
	}

	s := NewStore(mem)
	cfg, err := s.Lookup(ctx, "legacy")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if cfg.Greeting != "hello" || cfg.Instructions != "context" {
		t.Errorf("Lookup = %+v", cfg)
	}
}
