// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/granarylabs/granary/builtin/farm/fees"
	"github.com/granarylabs/granary/builtin/farm/reverts"
	"github.com/granarylabs/granary/builtin/slot"
	"github.com/granarylabs/granary/builtin/token"
	"github.com/granarylabs/granary/granary"
	"github.com/granarylabs/granary/lvldb"
	"github.com/granarylabs/granary/state"
)

var (
	farmAddr    = granary.BytesToAddress([]byte("farm"))
	ledgerAddr  = granary.BytesToAddress([]byte("ledger"))
	rewardAsset = granary.BytesToAddress([]byte("reward-asset"))
	assetA      = granary.BytesToAddress([]byte("asset-a"))
	assetB      = granary.BytesToAddress([]byte("asset-b"))
	admin       = granary.BytesToAddress([]byte("admin"))
	feeRecv     = granary.BytesToAddress([]byte("fee-recipient"))
	alice       = granary.BytesToAddress([]byte("alice"))
	bob         = granary.BytesToAddress([]byte("bob"))
)

type testEnv struct {
	t      *testing.T
	farm   *Farm
	ledger *token.Ledger
}

func newTestFarm(t *testing.T, start, end uint64, rate int64) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(db)

	ledger := token.New(ledgerAddr, st)
	f := New(slot.NewContext(farmAddr, st), ledger, token.NewMinter(ledger, rewardAsset))
	require.NoError(t, f.Initialize(admin, feeRecv, start, end, big.NewInt(rate)))
	return &testEnv{t: t, farm: f, ledger: ledger}
}

func (e *testEnv) addPool(asset granary.Address, weight int64, taxBps, subBps, now uint64) PoolID {
	id, err := e.farm.AddPool(admin, asset, big.NewInt(weight), 0, taxBps, subBps, false, now)
	require.NoError(e.t, err)
	return id
}

func (e *testEnv) fund(asset, holder granary.Address, amount int64) {
	require.NoError(e.t, e.ledger.Mint(asset, holder, big.NewInt(amount)))
}

func (e *testEnv) balance(asset, holder granary.Address) *big.Int {
	bal, err := e.ledger.BalanceOf(asset, holder)
	require.NoError(e.t, err)
	return bal
}

func (e *testEnv) pending(id PoolID, account granary.Address, now uint64) *big.Int {
	pending, err := e.farm.PendingReward(id, account, now)
	require.NoError(e.t, err)
	return pending
}

// checkpointInvariant asserts staked * accPerShare / SCALE == rewardDebt.
func (e *testEnv) checkpointInvariant(id PoolID, account granary.Address) {
	pool, err := e.farm.PoolInfo(id)
	require.NoError(e.t, err)
	pos, err := e.farm.GetPosition(id, account)
	require.NoError(e.t, err)

	expected := new(big.Int).Mul(pos.Staked, pool.AccPerShare)
	expected.Div(expected, granary.AccrualScale)
	assert.Equal(e.t, expected, pos.RewardDebt)
}

func TestAddPool(t *testing.T) {
	env := newTestFarm(t, 1000, 87400, 100)

	id := env.addPool(assetA, 1, 0, 0, 500)
	assert.Equal(t, PoolID(0), id)

	count, err := env.farm.PoolCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	// accrual never starts before the emission window
	pool, err := env.farm.PoolInfo(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), pool.LastAccrual)
	assert.False(t, pool.Active)

	// start hint pushes accrual further out
	id2, err := env.farm.AddPool(admin, assetB, big.NewInt(2), 5000, 0, 0, false, 500)
	require.NoError(t, err)
	assert.Equal(t, PoolID(1), id2)
	pool, err = env.farm.PoolInfo(id2)
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), pool.LastAccrual)

	// dormant pools contribute nothing to total weight
	tw, err := env.farm.TotalWeight()
	require.NoError(t, err)
	assert.Zero(t, tw.Sign())

	_, err = env.farm.AddPool(admin, assetA, big.NewInt(1), 0, 0, 0, false, 500)
	assert.ErrorIs(t, err, reverts.ErrDuplicateAsset)

	_, err = env.farm.AddPool(admin, granary.BytesToAddress([]byte("c")), big.NewInt(1), 0, 401, 0, false, 500)
	assert.ErrorIs(t, err, reverts.ErrFeeOutOfRange)

	_, err = env.farm.AddPool(admin, granary.BytesToAddress([]byte("c")), big.NewInt(1), 0, 0, 1001, false, 500)
	assert.ErrorIs(t, err, reverts.ErrFeeOutOfRange)

	_, err = env.farm.AddPool(alice, granary.BytesToAddress([]byte("c")), big.NewInt(1), 0, 0, 0, false, 500)
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)
}

func TestUnknownPool(t *testing.T) {
	env := newTestFarm(t, 1000, 87400, 100)
	env.fund(assetA, alice, 1000)

	assert.ErrorIs(t, env.farm.Deposit(alice, 0, big.NewInt(1), 1000), reverts.ErrUnknownPool)
	assert.ErrorIs(t, env.farm.Withdraw(alice, 0, big.NewInt(1), 1000), reverts.ErrUnknownPool)
	_, err := env.farm.PendingReward(0, alice, 1000)
	assert.ErrorIs(t, err, reverts.ErrUnknownPool)
	_, err = env.farm.PoolInfo(9)
	assert.ErrorIs(t, err, reverts.ErrUnknownPool)
}

// Emission window [1000, 87400] (24h): after 12h of a constant 1000
// unit stake in the only pool, pending reward is exactly half the
// total budget.
func TestHalfBudgetAtHalfWindow(t *testing.T) {
	const rate = 125000
	env := newTestFarm(t, 1000, 87400, rate)
	id := env.addPool(assetA, 100, 0, 0, 1000)
	env.fund(assetA, alice, 1000)

	require.NoError(t, env.farm.Deposit(alice, id, big.NewInt(1000), 1000))

	halfway := uint64(1000 + 43200)
	half := big.NewInt(43200 * rate)
	assert.Equal(t, half, env.pending(id, alice, halfway))

	sched, err := env.farm.Schedule()
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Lsh(half, 1), sched.TotalBudget())

	// a zero deposit claims exactly the projection
	require.NoError(t, env.farm.Deposit(alice, id, big.NewInt(0), halfway))
	assert.Equal(t, half, env.balance(rewardAsset, alice))
	env.checkpointInvariant(id, alice)

	// past the window the accrual stops at emissionEnd
	full := big.NewInt(86400 * rate)
	assert.Equal(t, new(big.Int).Sub(full, half), env.pending(id, alice, 200000))
}

// Two active pools with weights 1 and 3 split one accrual pass 1:3.
func TestWeightSplit(t *testing.T) {
	const rate = 4000
	env := newTestFarm(t, 1000, 1000000, rate)
	idA := env.addPool(assetA, 1, 0, 0, 1000)
	idB := env.addPool(assetB, 3, 0, 0, 1000)

	env.fund(assetA, alice, 1000)
	env.fund(assetB, bob, 1000)
	require.NoError(t, env.farm.Deposit(alice, idA, big.NewInt(1000), 1000))
	require.NoError(t, env.farm.Deposit(bob, idB, big.NewInt(1000), 1000))

	// first pass activates both pools
	require.NoError(t, env.farm.MassUpdate(2000))
	tw, err := env.farm.TotalWeight()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(4), tw)

	baseA := env.pending(idA, alice, 2000)
	baseB := env.pending(idB, bob, 2000)

	// one shared pass over [2000, 3000]
	require.NoError(t, env.farm.MassUpdate(3000))
	deltaA := new(big.Int).Sub(env.pending(idA, alice, 3000), baseA)
	deltaB := new(big.Int).Sub(env.pending(idB, bob, 3000), baseB)

	assert.Equal(t, big.NewInt(1000*rate/4), deltaA)
	assert.Equal(t, new(big.Int).Mul(deltaA, big.NewInt(3)), deltaB)
}

func TestDepositTax(t *testing.T) {
	env := newTestFarm(t, 1000, 87400, 100)
	id := env.addPool(assetA, 1, 400, 0, 1000)
	env.fund(assetA, alice, 10000)

	require.NoError(t, env.farm.Deposit(alice, id, big.NewInt(10000), 1000))

	assert.Equal(t, big.NewInt(400), env.balance(assetA, feeRecv))
	assert.Equal(t, big.NewInt(9600), env.balance(assetA, farmAddr))
	assert.Zero(t, env.balance(assetA, alice).Sign())

	pos, err := env.farm.GetPosition(id, alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(9600), pos.Staked)
	assert.Equal(t, uint64(1000), pos.DepositTime)
	env.checkpointInvariant(id, alice)
}

// Deposit then immediate withdrawal yields zero reward and the exit tax
// at its configured maximum.
func TestImmediateWithdraw(t *testing.T) {
	env := newTestFarm(t, 1000, 87400, 100)
	id := env.addPool(assetA, 1, 100, 0, 1000)
	env.fund(assetA, alice, 10000)

	require.NoError(t, env.farm.Deposit(alice, id, big.NewInt(10000), 2000))
	// net of the 1% deposit tax
	require.NoError(t, env.farm.Withdraw(alice, id, big.NewInt(9900), 2000))

	// no time elapsed: no reward
	assert.Zero(t, env.balance(rewardAsset, alice).Sign())

	// exit tax at day 0 is the 500 bps maximum: 9900 * 5% = 495
	assert.Equal(t, big.NewInt(9405), env.balance(assetA, alice))
	assert.Equal(t, big.NewInt(100+495), env.balance(assetA, feeRecv))

	pos, err := env.farm.GetPosition(id, alice)
	require.NoError(t, err)
	assert.Zero(t, pos.Staked.Sign())
	assert.Zero(t, pos.RewardDebt.Sign())
	env.checkpointInvariant(id, alice)
}

// Pools without a deposit tax charge no exit tax either.
func TestWithdrawUntaxedPool(t *testing.T) {
	env := newTestFarm(t, 1000, 87400, 100)
	id := env.addPool(assetA, 1, 0, 0, 1000)
	env.fund(assetA, alice, 1000)

	require.NoError(t, env.farm.Deposit(alice, id, big.NewInt(1000), 2000))
	require.NoError(t, env.farm.Withdraw(alice, id, big.NewInt(1000), 2000))
	assert.Equal(t, big.NewInt(1000), env.balance(assetA, alice))
	assert.Zero(t, env.balance(assetA, feeRecv).Sign())
}

func TestWithdrawExitTaxDecays(t *testing.T) {
	env := newTestFarm(t, 0, 1, 0)
	id := env.addPool(assetA, 1, 100, 0, 1000)
	env.fund(assetA, alice, 20000)

	require.NoError(t, env.farm.Deposit(alice, id, big.NewInt(10000), 1000))

	// day 30: decayed from 500 to the 200 bps floor
	day30 := uint64(1000 + 30*granary.SecondsPerDay)
	require.NoError(t, env.farm.Withdraw(alice, id, big.NewInt(9900), day30))
	// 10000 never deposited + 9900 back net of 9900 * 2% = 198
	assert.Equal(t, big.NewInt(10000+9900-198), env.balance(assetA, alice))
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	env := newTestFarm(t, 1000, 87400, 100)
	id := env.addPool(assetA, 1, 0, 0, 1000)
	env.fund(assetA, alice, 1000)
	require.NoError(t, env.farm.Deposit(alice, id, big.NewInt(1000), 1000))

	before, err := env.farm.PoolInfo(id)
	require.NoError(t, err)

	err = env.farm.Withdraw(alice, id, big.NewInt(1001), 5000)
	assert.ErrorIs(t, err, reverts.ErrInsufficientBalance)

	// failed operations leave all state unchanged, accrual included
	after, err := env.farm.PoolInfo(id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSubscriptionLevy(t *testing.T) {
	env := newTestFarm(t, 1000, 1e9, 100)
	id := env.addPool(assetA, 1, 0, 100, 1000)
	env.fund(assetA, alice, 1000000)

	start := uint64(10000)
	require.NoError(t, env.farm.Deposit(alice, id, big.NewInt(1000000), start))

	weeks, err := env.farm.UnpaidSubscriptionWeeks(id, alice, start+3*granary.SubscriptionPeriod+granary.SecondsPerDay)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), weeks)

	// 1% per week for 3 weeks: 30000 levied, reducing both the stake
	// and the requested amount
	now := start + 3*granary.SubscriptionPeriod
	require.NoError(t, env.farm.Withdraw(alice, id, big.NewInt(500000), now))

	assert.Equal(t, big.NewInt(30000), env.balance(assetA, feeRecv))
	assert.Equal(t, big.NewInt(470000), env.balance(assetA, alice))

	pos, err := env.farm.GetPosition(id, alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500000), pos.Staked)
	assert.Equal(t, now, pos.LastSubscription)
	env.checkpointInvariant(id, alice)

	weeks, err = env.farm.UnpaidSubscriptionWeeks(id, alice, now)
	require.NoError(t, err)
	assert.Zero(t, weeks)
}

// A levy larger than the stake is clamped; the withdrawal amount floors
// at zero instead of going negative.
func TestSubscriptionLevyClamped(t *testing.T) {
	env := newTestFarm(t, 1000, 1e9, 100)
	id := env.addPool(assetA, 1, 0, 1000, 1000)
	env.fund(assetA, alice, 1000)

	start := uint64(10000)
	require.NoError(t, env.farm.Deposit(alice, id, big.NewInt(1000), start))

	// 10% per week, 15 weeks unpaid: 150% of the stake
	now := start + 15*granary.SubscriptionPeriod
	require.NoError(t, env.farm.Withdraw(alice, id, big.NewInt(1000), now))

	assert.Equal(t, big.NewInt(1000), env.balance(assetA, feeRecv))
	assert.Zero(t, env.balance(assetA, alice).Sign())

	pos, err := env.farm.GetPosition(id, alice)
	require.NoError(t, err)
	assert.Zero(t, pos.Staked.Sign())
	env.checkpointInvariant(id, alice)
}

func TestEmergencyWithdraw(t *testing.T) {
	env := newTestFarm(t, 1000, 87400, 100)
	id0 := env.addPool(assetA, 1, 0, 0, 1000)
	id1 := env.addPool(assetB, 1, 400, 100, 1000)

	env.fund(assetA, alice, 1000)
	env.fund(assetB, alice, 10000)
	require.NoError(t, env.farm.Deposit(alice, id0, big.NewInt(1000), 1000))
	require.NoError(t, env.farm.Deposit(alice, id1, big.NewInt(10000), 1000))

	// the reserved pool refuses emergency withdrawal
	err := env.farm.EmergencyWithdraw(alice, id0, 2000)
	assert.ErrorIs(t, err, reverts.ErrProtectedPool)
	pos, err := env.farm.GetPosition(id0, alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), pos.Staked)

	// elsewhere it returns the stake with no fees and forfeits reward
	require.NoError(t, env.farm.EmergencyWithdraw(alice, id1, 50000))
	assert.Equal(t, big.NewInt(9600), env.balance(assetB, alice))
	assert.Zero(t, env.balance(rewardAsset, alice).Sign())

	pos, err = env.farm.GetPosition(id1, alice)
	require.NoError(t, err)
	assert.Zero(t, pos.Staked.Sign())
	assert.Zero(t, pos.RewardDebt.Sign())
	// timestamps persist for audit
	assert.Equal(t, uint64(1000), pos.DepositTime)
	assert.Zero(t, env.pending(id1, alice, 80000).Sign())
}

// Accruing twice at the same timestamp changes nothing the second time.
func TestAccrualIdempotent(t *testing.T) {
	env := newTestFarm(t, 1000, 87400, 100)
	id := env.addPool(assetA, 1, 0, 0, 1000)
	env.fund(assetA, alice, 1000)
	require.NoError(t, env.farm.Deposit(alice, id, big.NewInt(1000), 1000))

	require.NoError(t, env.farm.UpdatePool(id, 5000))
	first, err := env.farm.PoolInfo(id)
	require.NoError(t, err)
	assert.True(t, first.Active)

	require.NoError(t, env.farm.UpdatePool(id, 5000))
	second, err := env.farm.PoolInfo(id)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// stale clock input is equally inert
	require.NoError(t, env.farm.UpdatePool(id, 4000))
	third, err := env.farm.PoolInfo(id)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

// Reward of intervals with zero staked supply is permanently lost, not
// banked for later distribution.
func TestZeroSupplyIntervalLost(t *testing.T) {
	const rate = 100
	env := newTestFarm(t, 1000, 1000000, rate)
	id := env.addPool(assetA, 1, 0, 0, 1000)
	env.fund(assetA, alice, 1000)

	require.NoError(t, env.farm.Deposit(alice, id, big.NewInt(1000), 1000))
	require.NoError(t, env.farm.Withdraw(alice, id, big.NewInt(1000), 2000))
	claimed := env.balance(rewardAsset, alice)
	assert.Equal(t, big.NewInt(1000*rate), claimed)

	// nobody staked over [2000, 9000]
	require.NoError(t, env.farm.Deposit(alice, id, big.NewInt(1000), 9000))
	assert.Equal(t, big.NewInt(1000*rate), env.pending(id, alice, 10000))
}

func TestAccPerShareMonotonic(t *testing.T) {
	env := newTestFarm(t, 1000, 1000000, 333)
	id := env.addPool(assetA, 1, 100, 100, 1000)
	env.fund(assetA, alice, 100000)
	env.fund(assetA, bob, 100000)

	last := new(big.Int)
	check := func() {
		pool, err := env.farm.PoolInfo(id)
		require.NoError(t, err)
		assert.True(t, pool.AccPerShare.Cmp(last) >= 0)
		last = pool.AccPerShare
	}

	require.NoError(t, env.farm.Deposit(alice, id, big.NewInt(50000), 1000))
	check()
	require.NoError(t, env.farm.Deposit(bob, id, big.NewInt(30000), 5000))
	check()
	require.NoError(t, env.farm.Withdraw(alice, id, big.NewInt(20000), 700000))
	check()
	env.checkpointInvariant(id, alice)
	env.checkpointInvariant(id, bob)
	require.NoError(t, env.farm.Deposit(bob, id, big.NewInt(0), 900000))
	check()
	env.checkpointInvariant(id, bob)
}

func TestSetPoolWeight(t *testing.T) {
	env := newTestFarm(t, 1000, 87400, 100)
	id := env.addPool(assetA, 2, 0, 0, 1000)

	// dormant pool: weight changes without touching totalWeight
	require.NoError(t, env.farm.SetPoolWeight(admin, id, big.NewInt(5), 1000))
	tw, err := env.farm.TotalWeight()
	require.NoError(t, err)
	assert.Zero(t, tw.Sign())

	env.fund(assetA, alice, 1000)
	require.NoError(t, env.farm.Deposit(alice, id, big.NewInt(1000), 1000))
	require.NoError(t, env.farm.UpdatePool(id, 2000))

	require.NoError(t, env.farm.SetPoolWeight(admin, id, big.NewInt(7), 3000))
	tw, err = env.farm.TotalWeight()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), tw)

	assert.ErrorIs(t, env.farm.SetPoolWeight(alice, id, big.NewInt(1), 3000), reverts.ErrUnauthorized)
}

func TestFeeSetters(t *testing.T) {
	env := newTestFarm(t, 1000, 87400, 100)
	id := env.addPool(assetA, 1, 0, 0, 1000)

	require.NoError(t, env.farm.SetDepositTax(admin, id, 400))
	assert.ErrorIs(t, env.farm.SetDepositTax(admin, id, 401), reverts.ErrFeeOutOfRange)
	assert.ErrorIs(t, env.farm.SetDepositTax(alice, id, 100), reverts.ErrUnauthorized)

	require.NoError(t, env.farm.SetSubscriptionRate(admin, id, 1000))
	assert.ErrorIs(t, env.farm.SetSubscriptionRate(admin, id, 1001), reverts.ErrFeeOutOfRange)

	pool, err := env.farm.PoolInfo(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(400), pool.DepositTaxBps)
	assert.Equal(t, uint64(1000), pool.SubscriptionRateBps)
}

// Changing the emission rate settles elapsed intervals at the old rate.
func TestSetEmissionRate(t *testing.T) {
	env := newTestFarm(t, 1000, 1000000, 100)
	id := env.addPool(assetA, 1, 0, 0, 1000)
	env.fund(assetA, alice, 1000)
	require.NoError(t, env.farm.Deposit(alice, id, big.NewInt(1000), 1000))

	require.NoError(t, env.farm.SetEmissionRate(admin, big.NewInt(200), 2000))
	assert.ErrorIs(t, env.farm.SetEmissionRate(alice, big.NewInt(1), 2000), reverts.ErrUnauthorized)

	// 1000s at rate 100, then 500s at rate 200
	assert.Equal(t, big.NewInt(1000*100+500*200), env.pending(id, alice, 2500))
}

func TestSetFeeRecipient(t *testing.T) {
	env := newTestFarm(t, 1000, 87400, 100)

	other := granary.BytesToAddress([]byte("treasury"))
	require.NoError(t, env.farm.SetFeeRecipient(admin, other))
	recipient, err := env.farm.FeeRecipient()
	require.NoError(t, err)
	assert.Equal(t, other, recipient)

	assert.ErrorIs(t, env.farm.SetFeeRecipient(alice, other), reverts.ErrUnauthorized)
}

// A failure mid-operation rolls back every state change of the
// operation, including the accrual it already performed.
func TestAtomicRollback(t *testing.T) {
	env := newTestFarm(t, 1000, 87400, 100)
	id := env.addPool(assetA, 1, 0, 0, 1000)
	env.fund(assetA, alice, 1000)
	require.NoError(t, env.farm.Deposit(alice, id, big.NewInt(1000), 1000))

	before, err := env.farm.PoolInfo(id)
	require.NoError(t, err)

	// bob has no funds: the transfer fails after the pool was accrued
	err = env.farm.Deposit(bob, id, big.NewInt(500), 9000)
	assert.ErrorIs(t, err, reverts.ErrInsufficientFunds)

	after, err := env.farm.PoolInfo(id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

type memRecorder struct {
	events []*Event
}

func (r *memRecorder) Record(ev *Event) error {
	r.events = append(r.events, ev)
	return nil
}

func TestEventRecording(t *testing.T) {
	env := newTestFarm(t, 1000, 87400, 100)
	rec := &memRecorder{}
	env.farm.OnEvent(rec)

	id := env.addPool(assetA, 1, 400, 0, 1000)
	env.fund(assetA, alice, 10000)

	require.NoError(t, env.farm.Deposit(alice, id, big.NewInt(10000), 1000))
	require.Len(t, rec.events, 1)
	assert.Equal(t, EventDeposit, rec.events[0].Name)
	assert.Equal(t, big.NewInt(9600), rec.events[0].Amount)

	// failed operations leave no trace
	err := env.farm.Deposit(bob, id, big.NewInt(1), 1000)
	assert.ErrorIs(t, err, reverts.ErrInsufficientFunds)
	assert.Len(t, rec.events, 1)

	require.NoError(t, env.farm.Withdraw(alice, id, big.NewInt(9600), 50000))
	names := []string{}
	for _, ev := range rec.events[1:] {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{EventClaim, EventWithdraw}, names)
}

func TestConcurrentDepositAndCommit(t *testing.T) {
	env := newTestFarm(t, 1000, 87400, 100)
	id := env.addPool(assetA, 1, 0, 0, 1000)
	env.fund(assetA, alice, 1000)
	env.fund(assetA, bob, 1000)

	// operations and flushes race from separate goroutines, the way
	// concurrent HTTP requests drive them; both must serialize on the
	// operation lock.
	var wg sync.WaitGroup
	for _, account := range []granary.Address{alice, bob} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				assert.NoError(t, env.farm.Deposit(account, id, big.NewInt(100), 2000))
				assert.NoError(t, env.farm.Commit())
			}
		}()
	}
	wg.Wait()

	pool, err := env.farm.PoolInfo(id)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2000), pool.TotalStaked)
	env.checkpointInvariant(id, alice)
	env.checkpointInvariant(id, bob)
}

func TestSetCurveValidated(t *testing.T) {
	env := newTestFarm(t, 1000, 87400, 100)
	id := env.addPool(assetA, 1, 400, 0, 1000)
	env.fund(assetA, alice, 10000)
	require.NoError(t, env.farm.Deposit(alice, id, big.NewInt(10000), 1000))

	// inverted parameters are rejected and leave the default in place
	assert.Error(t, env.farm.SetCurve(fees.Curve{MaxBps: 100, MinBps: 200, StepBpsPerDay: 1}))

	require.NoError(t, env.farm.Withdraw(alice, id, big.NewInt(9600), 1000))
	assert.Equal(t, big.NewInt(9120), env.balance(assetA, alice))

	require.NoError(t, env.farm.SetCurve(fees.Curve{MaxBps: 300, MinBps: 100, StepBpsPerDay: 10}))
}
