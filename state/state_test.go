// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/granarylabs/granary/granary"
	"github.com/granarylabs/granary/lvldb"
)

func TestStorage(t *testing.T) {
	db, _ := lvldb.NewMem()
	defer db.Close()
	st := New(db)

	addr := granary.BytesToAddress([]byte("farm"))
	key := granary.BytesToBytes32([]byte("total-weight"))
	value := granary.BytesToBytes32([]byte{0x12, 0x34})

	got, err := st.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.True(t, got.IsZero())

	st.SetStorage(addr, key, value)
	got, err = st.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.Equal(t, value, got)

	// zero value deletes the cell
	st.SetStorage(addr, key, granary.Bytes32{})
	raw, err := st.GetRawStorage(addr, key)
	assert.NoError(t, err)
	assert.Len(t, raw, 0)
}

func TestCheckpointRevert(t *testing.T) {
	db, _ := lvldb.NewMem()
	defer db.Close()
	st := New(db)

	addr := granary.BytesToAddress([]byte("farm"))
	key := granary.BytesToBytes32([]byte("k"))
	v1 := granary.BytesToBytes32([]byte{1})
	v2 := granary.BytesToBytes32([]byte{2})

	st.SetStorage(addr, key, v1)

	rev := st.NewCheckpoint()
	st.SetStorage(addr, key, v2)
	got, _ := st.GetStorage(addr, key)
	assert.Equal(t, v2, got)

	st.RevertTo(rev)
	got, _ = st.GetStorage(addr, key)
	assert.Equal(t, v1, got)
}

func TestCommitPersists(t *testing.T) {
	db, _ := lvldb.NewMem()
	defer db.Close()

	addr := granary.BytesToAddress([]byte("farm"))
	key := granary.BytesToBytes32([]byte("k"))
	value := granary.BytesToBytes32([]byte{0xaa})

	st := New(db)
	st.SetStorage(addr, key, value)
	require.NoError(t, st.Commit())

	// a fresh state over the same db sees the committed value
	st2 := New(db)
	got, err := st2.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestCommitDropsDeleted(t *testing.T) {
	db, _ := lvldb.NewMem()
	defer db.Close()

	addr := granary.BytesToAddress([]byte("farm"))
	key := granary.BytesToBytes32([]byte("k"))

	st := New(db)
	st.SetStorage(addr, key, granary.BytesToBytes32([]byte{1}))
	require.NoError(t, st.Commit())

	st.SetStorage(addr, key, granary.Bytes32{})
	require.NoError(t, st.Commit())

	st2 := New(db)
	got, err := st2.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestEncodeDecodeStorage(t *testing.T) {
	db, _ := lvldb.NewMem()
	defer db.Close()
	st := New(db)

	addr := granary.BytesToAddress([]byte("farm"))
	key := granary.BytesToBytes32([]byte("k"))

	// never-written cell decodes from nil raw
	err := st.DecodeStorage(addr, key, func(raw []byte) error {
		assert.Len(t, raw, 0)
		return nil
	})
	assert.NoError(t, err)

	assert.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return []byte{0x1, 0x2}, nil
	}))
	err = st.DecodeStorage(addr, key, func(raw []byte) error {
		assert.Equal(t, []byte{0x1, 0x2}, raw)
		return nil
	})
	assert.NoError(t, err)
}
