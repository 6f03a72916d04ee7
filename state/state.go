// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/granarylabs/granary/granary"
	"github.com/granarylabs/granary/kv"
	"github.com/granarylabs/granary/stackedmap"
)

const storagePrefix = "s"

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// storageKey indexes one storage cell of one holder address.
type storageKey struct {
	addr granary.Address
	key  granary.Bytes32
}

func (k *storageKey) persistent() []byte {
	b := make([]byte, 0, len(storagePrefix)+granary.AddressLength+32)
	b = append(b, storagePrefix...)
	b = append(b, k.addr.Bytes()...)
	return append(b, k.key.Bytes()...)
}

// State manages the ledger world state.
// All values are kept as raw rlp in a stacked map, backed by a kv store;
// checkpoints make each operation all-or-nothing.
type State struct {
	db kv.GetPutter
	sm *stackedmap.StackedMap
}

// New create state object backed by the given kv store.
func New(db kv.GetPutter) *State {
	state := State{db: db}
	state.sm = stackedmap.New(func(key any) (any, bool, error) {
		return state.dbGetter(key)
	})
	// base level, flushed by Commit
	state.sm.Push()
	return &state
}

// dbGetter implements stackedmap.MapGetter.
func (s *State) dbGetter(key any) (value any, exist bool, err error) {
	switch k := key.(type) {
	case storageKey:
		raw, err := s.db.Get(k.persistent())
		if err != nil {
			if s.db.IsNotFound(err) {
				return rlp.RawValue(nil), true, nil
			}
			return nil, false, &Error{err}
		}
		return rlp.RawValue(raw), true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr granary.Address, key granary.Bytes32) (rlp.RawValue, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, err
	}
	return v.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr granary.Address, key granary.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr granary.Address, key granary.Bytes32) (granary.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return granary.Bytes32{}, err
	}
	if len(raw) == 0 {
		return granary.Bytes32{}, nil
	}
	_, content, _, err := rlp.Split(raw)
	if err != nil {
		return granary.Bytes32{}, &Error{err}
	}
	return granary.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr granary.Address, key, value granary.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// EncodeStorage set storage value encoded by given enc method.
// An empty encoded value deletes the storage cell.
func (s *State) EncodeStorage(addr granary.Address, key granary.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// dec receives nil raw for never-written cells.
func (s *State) DecodeStorage(addr granary.Address, key granary.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts state to the given revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Commit flushes all retained changes into the backing kv store
// and collapses the checkpoint stack.
func (s *State) Commit() error {
	batch := s.db.NewBatch()

	// retain only the latest write per key
	latest := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(key, value any) bool {
		latest[key.(storageKey)] = value.(rlp.RawValue)
		return true
	})
	for key, raw := range latest {
		if len(raw) == 0 {
			if err := batch.Delete(key.persistent()); err != nil {
				return &Error{err}
			}
			continue
		}
		if err := batch.Put(key.persistent(), raw); err != nil {
			return &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}

	s.sm.PopTo(0)
	s.sm.Push()
	return nil
}
