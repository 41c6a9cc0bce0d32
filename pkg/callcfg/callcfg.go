// Package callcfg stores and looks up per-call configuration: the greeting
// the bridge should speak when the call connects and optional system
// instructions injected by whatever enqueued the call.
//
// Configuration is keyed by the telephony provider's external call
// identifier and written by the control plane that starts calls; the bridge
// only reads it. A missing entry is not an error — every field has a
// service-level default.
package callcfg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/telvox/callbridge/pkg/kv"
)

// keyPrefix namespaces call config entries in the shared store.
const keyPrefix = "call_config"

// Config is the call-scoped configuration.
type Config struct {
	// Greeting is the sentence spoken verbatim when the call connects.
	// Empty means the service default applies.
	Greeting string `json:"welcome_message,omitzero"`

	// Instructions is injected system-instruction text (for instance the
	// extracted content of an uploaded document). Empty means the service
	// default applies.
	Instructions string `json:"extracted_file_text,omitzero"`
}

// Store reads and writes call configuration in a kv.Store.
type Store struct {
	kv kv.Store
}

// NewStore wraps a kv.Store.
func NewStore(s kv.Store) *Store {
	return &Store{kv: s}
}

// Lookup returns the configuration for a call. An absent entry yields a
// zero Config and no error, so defaults apply.
func (s *Store) Lookup(ctx context.Context, callID string) (Config, error) {
	if callID == "" {
		return Config{}, nil
	}
	data, err := s.kv.Get(ctx, kv.Key{keyPrefix, callID})
	if errors.Is(err, kv.ErrNotFound) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("callcfg: lookup %s: %w", callID, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("callcfg: decode %s: %w", callID, err)
	}
	return cfg, nil
}

// Put stores the configuration for a call. Called by the control plane
// before the telephony provider connects the media stream.
func (s *Store) Put(ctx context.Context, callID string, cfg Config) error {
	if callID == "" {
		return errors.New("callcfg: call ID is required")
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("callcfg: encode %s: %w", callID, err)
	}
	return s.kv.Set(ctx, kv.Key{keyPrefix, callID}, data)
}

// Delete removes the configuration for a call after it completes.
func (s *Store) Delete(ctx context.Context, callID string) error {
	return s.kv.Delete(ctx, kv.Key{keyPrefix, callID})
}
