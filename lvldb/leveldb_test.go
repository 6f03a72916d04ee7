// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemDB(t *testing.T) {
	db, err := NewMem()
	assert.NoError(t, err)
	defer db.Close()

	key := []byte("key")
	value := []byte("value")

	_, err = db.Get(key)
	assert.True(t, db.IsNotFound(err))

	assert.NoError(t, db.Put(key, value))

	has, err := db.Has(key)
	assert.NoError(t, err)
	assert.True(t, has)

	got, err := db.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, value, got)

	assert.NoError(t, db.Delete(key))
	_, err = db.Get(key)
	assert.True(t, db.IsNotFound(err))
}

func TestBatch(t *testing.T) {
	db, err := NewMem()
	assert.NoError(t, err)
	defer db.Close()

	batch := db.NewBatch()
	assert.NoError(t, batch.Put([]byte("a1"), []byte("v1")))
	assert.NoError(t, batch.Put([]byte("a2"), []byte("v2")))
	assert.NoError(t, batch.Delete([]byte("a2")))
	assert.Equal(t, 3, batch.Len())
	assert.NoError(t, batch.Write())

	got, err := db.Get([]byte("a1"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	// batch ops apply in order, so the delete wins
	_, err = db.Get([]byte("a2"))
	assert.True(t, db.IsNotFound(err))
}
