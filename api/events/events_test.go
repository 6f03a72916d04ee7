// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/granarylabs/granary/builtin/farm"
	"github.com/granarylabs/granary/eventdb"
	"github.com/granarylabs/granary/granary"
)

var alice = granary.BytesToAddress([]byte("alice"))

func newTestServer(t *testing.T) string {
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(db.Close)

	for i := 0; i < 5; i++ {
		require.NoError(t, db.Record(&farm.Event{
			Name:    farm.EventDeposit,
			Pool:    uint32(i % 2),
			Account: alice,
			Amount:  big.NewInt(int64(100 * (i + 1))),
			Time:    uint64(1000 * (i + 1)),
		}))
	}

	router := mux.NewRouter()
	New(db, 3).Mount(router, "/events")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts.URL
}

func filter(t *testing.T, url string, body *FilterBody) []*Event {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url+"/events", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var events []*Event
	require.NoError(t, json.NewDecoder(res.Body).Decode(&events))
	return events
}

func TestFilterLimited(t *testing.T) {
	url := newTestServer(t)

	// the configured limit caps unbounded queries
	events := filter(t, url, &FilterBody{})
	assert.Len(t, events, 3)
}

func TestFilterCriteria(t *testing.T) {
	url := newTestServer(t)

	pool := uint32(0)
	events := filter(t, url, &FilterBody{Pool: &pool})
	require.Len(t, events, 3)
	assert.Equal(t, alice, events[0].Account)
	assert.Equal(t, big.NewInt(100), (*big.Int)(events[0].Amount))

	events = filter(t, url, &FilterBody{From: 2000, To: 3000, Order: eventdb.DESC})
	require.Len(t, events, 2)
	assert.Equal(t, uint64(3000), events[0].Time)
}
