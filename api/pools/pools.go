// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pools exposes the staking ledger over HTTP: read-only pool,
// position and projection queries, plus the staking and administrative
// operations with the acting account given as a caller field.
package pools

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/granarylabs/granary/api/utils"
	"github.com/granarylabs/granary/builtin/farm"
	"github.com/granarylabs/granary/builtin/farm/reverts"
	"github.com/granarylabs/granary/granary"
)

type Pools struct {
	farm   *farm.Farm
	now    func() uint64
	commit func() error
}

// New creates the pools API. now supplies the operation timestamp;
// commit, if non-nil, flushes state after each successful mutation and
// must serialize against the engine's operations (farm.Commit does).
func New(f *farm.Farm, now func() uint64, commit func() error) *Pools {
	return &Pools{farm: f, now: now, commit: commit}
}

// convertError maps domain failures to http statuses.
func convertError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, reverts.ErrUnknownPool):
		return utils.NotFound(err)
	case errors.Is(err, reverts.ErrUnauthorized):
		return utils.Forbidden(err)
	case reverts.IsRevertErr(err):
		return utils.BadRequest(err)
	default:
		return err
	}
}

func (p *Pools) committed(err error) error {
	if err != nil {
		return convertError(err)
	}
	if p.commit != nil {
		return p.commit()
	}
	return nil
}

func poolID(req *http.Request) (farm.PoolID, error) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return farm.PoolID(id), nil
}

func account(req *http.Request) (granary.Address, error) {
	addr, err := granary.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return granary.Address{}, utils.BadRequest(errors.WithMessage(err, "address"))
	}
	return *addr, nil
}

func (p *Pools) handleGetOverview(w http.ResponseWriter, _ *http.Request) error {
	count, err := p.farm.PoolCount()
	if err != nil {
		return err
	}
	totalWeight, err := p.farm.TotalWeight()
	if err != nil {
		return err
	}
	sched, err := p.farm.Schedule()
	if err != nil {
		return err
	}
	recipient, err := p.farm.FeeRecipient()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Overview{
		PoolCount:     count,
		TotalWeight:   toDecimal(totalWeight),
		EmissionStart: sched.Start,
		EmissionEnd:   sched.End,
		EmissionRate:  toDecimal(sched.Rate),
		TotalBudget:   toDecimal(sched.TotalBudget()),
		FeeRecipient:  recipient,
	})
}

func (p *Pools) handleListPools(w http.ResponseWriter, _ *http.Request) error {
	count, err := p.farm.PoolCount()
	if err != nil {
		return err
	}
	list := make([]*Pool, 0, count)
	for i := uint64(0); i < count; i++ {
		pool, err := p.farm.PoolInfo(farm.PoolID(i))
		if err != nil {
			return err
		}
		list = append(list, convertPool(farm.PoolID(i), pool))
	}
	return utils.WriteJSON(w, list)
}

func (p *Pools) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	id, err := poolID(req)
	if err != nil {
		return err
	}
	pool, err := p.farm.PoolInfo(id)
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, convertPool(id, pool))
}

func (p *Pools) handleGetPosition(w http.ResponseWriter, req *http.Request) error {
	id, err := poolID(req)
	if err != nil {
		return err
	}
	addr, err := account(req)
	if err != nil {
		return err
	}
	pos, err := p.farm.GetPosition(id, addr)
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, convertPosition(pos))
}

func (p *Pools) handleGetPending(w http.ResponseWriter, req *http.Request) error {
	id, err := poolID(req)
	if err != nil {
		return err
	}
	addr, err := account(req)
	if err != nil {
		return err
	}
	pending, err := p.farm.PendingReward(id, addr, p.now())
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, utils.M{"pending": toDecimal(pending)})
}

func (p *Pools) handleGetSubscription(w http.ResponseWriter, req *http.Request) error {
	id, err := poolID(req)
	if err != nil {
		return err
	}
	addr, err := account(req)
	if err != nil {
		return err
	}
	weeks, err := p.farm.UnpaidSubscriptionWeeks(id, addr, p.now())
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, utils.M{"unpaidWeeks": weeks})
}

func (p *Pools) handleAddPool(w http.ResponseWriter, req *http.Request) error {
	var body AddPoolBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	id, err := p.farm.AddPool(
		body.Caller,
		body.StakedAsset,
		toBig(body.Weight),
		body.StartHint,
		body.DepositTaxBps,
		body.SubscriptionRateBps,
		body.MassUpdate,
		p.now(),
	)
	if err := p.committed(err); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"id": uint32(id)})
}

func (p *Pools) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	id, err := poolID(req)
	if err != nil {
		return err
	}
	var body AmountBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.committed(p.farm.Deposit(body.Caller, id, toBig(body.Amount), p.now())); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

func (p *Pools) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	id, err := poolID(req)
	if err != nil {
		return err
	}
	var body AmountBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.committed(p.farm.Withdraw(body.Caller, id, toBig(body.Amount), p.now())); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

func (p *Pools) handleEmergencyWithdraw(w http.ResponseWriter, req *http.Request) error {
	id, err := poolID(req)
	if err != nil {
		return err
	}
	var body CallerBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.committed(p.farm.EmergencyWithdraw(body.Caller, id, p.now())); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

func (p *Pools) handleSetWeight(w http.ResponseWriter, req *http.Request) error {
	id, err := poolID(req)
	if err != nil {
		return err
	}
	var body WeightBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.committed(p.farm.SetPoolWeight(body.Caller, id, toBig(body.Weight), p.now())); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

func (p *Pools) handleSetDepositTax(w http.ResponseWriter, req *http.Request) error {
	id, err := poolID(req)
	if err != nil {
		return err
	}
	var body BpsBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.committed(p.farm.SetDepositTax(body.Caller, id, body.Bps)); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

func (p *Pools) handleSetSubscriptionRate(w http.ResponseWriter, req *http.Request) error {
	id, err := poolID(req)
	if err != nil {
		return err
	}
	var body BpsBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.committed(p.farm.SetSubscriptionRate(body.Caller, id, body.Bps)); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

func (p *Pools) handleSetEmissionRate(w http.ResponseWriter, req *http.Request) error {
	var body RateBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.committed(p.farm.SetEmissionRate(body.Caller, toBig(body.RatePerSecond), p.now())); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

func (p *Pools) handleSetFeeRecipient(w http.ResponseWriter, req *http.Request) error {
	var body RecipientBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.committed(p.farm.SetFeeRecipient(body.Caller, body.Recipient)); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

func (p *Pools) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleListPools))
	sub.Path("").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleAddPool))
	sub.Path("/overview").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetOverview))
	sub.Path("/emission-rate").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleSetEmissionRate))
	sub.Path("/fee-recipient").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleSetFeeRecipient))
	sub.Path("/{id}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/{id}/positions/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetPosition))
	sub.Path("/{id}/pending/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetPending))
	sub.Path("/{id}/subscription/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetSubscription))
	sub.Path("/{id}/deposit").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleDeposit))
	sub.Path("/{id}/withdraw").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleWithdraw))
	sub.Path("/{id}/emergency-withdraw").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleEmergencyWithdraw))
	sub.Path("/{id}/weight").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleSetWeight))
	sub.Path("/{id}/deposit-tax").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleSetDepositTax))
	sub.Path("/{id}/subscription-rate").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleSetSubscriptionRate))
}
