// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package events exposes the persisted domain events for audit queries.
package events

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/granarylabs/granary/api/utils"
	"github.com/granarylabs/granary/builtin/farm"
	"github.com/granarylabs/granary/eventdb"
	"github.com/granarylabs/granary/granary"
)

type Events struct {
	db    *eventdb.EventDB
	limit uint64
}

func New(db *eventdb.EventDB, limit uint64) *Events {
	return &Events{db: db, limit: limit}
}

// FilterBody is the JSON form of an event filter.
type FilterBody struct {
	Name    string           `json:"name"`
	Pool    *uint32          `json:"pool"`
	Account *granary.Address `json:"account"`
	From    uint64           `json:"from"`
	To      uint64           `json:"to"`
	Order   eventdb.Order    `json:"order"`
	Options *eventdb.Options `json:"options"`
}

// Event is the JSON projection of a stored event.
type Event struct {
	Name    string                `json:"name"`
	Pool    uint32                `json:"pool"`
	Account granary.Address       `json:"account"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
	Time    uint64                `json:"time"`
}

func convertEvent(ev *farm.Event) *Event {
	return &Event{
		Name:    ev.Name,
		Pool:    ev.Pool,
		Account: ev.Account,
		Amount:  (*math.HexOrDecimal256)(ev.Amount),
		Time:    ev.Time,
	}
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var body FilterBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	options := body.Options
	if options == nil || options.Limit > e.limit {
		options = &eventdb.Options{Limit: e.limit}
		if body.Options != nil {
			options.Offset = body.Options.Offset
		}
	}
	found, err := e.db.FilterEvents(req.Context(), &eventdb.Filter{
		Name:    body.Name,
		Pool:    body.Pool,
		Account: body.Account,
		From:    body.From,
		To:      body.To,
		Order:   body.Order,
		Options: options,
	})
	if err != nil {
		return err
	}
	converted := make([]*Event, 0, len(found))
	for _, ev := range found {
		converted = append(converted, convertEvent(ev))
	}
	return utils.WriteJSON(w, converted)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
