package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"ghochain/core/types"
	"ghochain/storage"
)

// Manager persists module state in the underlying key-value store using RLP
// encoding and collects the events appended during a state transition. The
// execution model is single-threaded per call; the host serializes all state
// transitions.
type Manager struct {
	db     storage.Database
	events []*types.Event
}

// NewManager constructs a manager bound to the provided storage backend.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

// KVPut stores the provided value under the supplied key using RLP encoding.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state manager unavailable")
	}
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.db.Put(key, encoded)
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// the provided destination. The boolean return value indicates whether the
// key existed in state.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if m == nil || m.db == nil {
		return false, fmt.Errorf("state manager unavailable")
	}
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, err := m.db.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVDelete removes the key from state.
func (m *Manager) KVDelete(key []byte) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state manager unavailable")
	}
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	return m.db.Delete(key)
}

// AppendEvent records a structured event emitted during the current state
// transition.
func (m *Manager) AppendEvent(evt *types.Event) {
	if m == nil || evt == nil {
		return
	}
	m.events = append(m.events, evt)
}

// Events returns the events collected so far, in emission order.
func (m *Manager) Events() []*types.Event {
	if m == nil {
		return nil
	}
	out := make([]*types.Event, len(m.events))
	copy(out, m.events)
	return out
}

// ClearEvents drops the collected events, typically after the host has
// flushed them to subscribers.
func (m *Manager) ClearEvents() {
	if m == nil {
		return
	}
	m.events = nil
}
