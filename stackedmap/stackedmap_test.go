// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/granarylabs/granary/stackedmap"
)

func TestStackedMap(t *testing.T) {
	assert := assert.New(t)
	src := make(map[string]string)
	src["foo"] = "bar"

	sm := stackedmap.New(func(key any) (any, bool, error) {
		v, r := src[key.(string)]
		return v, r, nil
	})

	tests := []struct {
		f         func()
		depth     int
		putKey    string
		putValue  string
		getKey    string
		getReturn []any
	}{
		{func() {}, 0, "", "", "foo", []any{"bar", true}},
		{func() { sm.Push() }, 1, "foo", "baz", "foo", []any{"baz", true}},
		{func() { sm.Push() }, 2, "foo", "qux", "foo", []any{"qux", true}},
		{func() { sm.Pop() }, 1, "", "", "foo", []any{"baz", true}},
		{func() { sm.Pop() }, 0, "", "", "foo", []any{"bar", true}},

		{func() { sm.Push(); sm.Push() }, 2, "", "", "", nil},
		{func() { sm.PopTo(0) }, 0, "", "", "", nil},
	}

	for _, tt := range tests {
		tt.f()
		assert.Equal(tt.depth, sm.Depth())
		if tt.putKey != "" {
			sm.Put(tt.putKey, tt.putValue)
		}
		if tt.getKey != "" {
			v, ok, err := sm.Get(tt.getKey)
			assert.Nil(err)
			assert.Equal(tt.getReturn, []any{v, ok})
		}
	}
}

func TestJournal(t *testing.T) {
	sm := stackedmap.New(func(_ any) (any, bool, error) {
		return nil, false, nil
	})

	sm.Push()
	sm.Put("a", "1")
	sm.Push()
	sm.Put("b", "2")

	var kvs [][2]string
	sm.Journal(func(k, v any) bool {
		kvs = append(kvs, [2]string{k.(string), v.(string)})
		return true
	})
	assert.Equal(t, [][2]string{{"a", "1"}, {"b", "2"}}, kvs)
}
