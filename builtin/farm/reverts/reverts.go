// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// ErrRevert is a domain rule violation.
// Operations failing with a revert error leave all state unchanged.
type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// The full failure taxonomy of the staking ledger.
var (
	// ErrDuplicateAsset a pool for the staked asset already exists.
	ErrDuplicateAsset = New("duplicate asset")

	// ErrFeeOutOfRange a fee parameter exceeds its configured bound.
	ErrFeeOutOfRange = New("fee out of range")

	// ErrInsufficientBalance withdrawal exceeds the staked amount.
	ErrInsufficientBalance = New("insufficient balance")

	// ErrProtectedPool emergency withdraw on the reserved pool.
	ErrProtectedPool = New("protected pool")

	// ErrInsufficientFunds a transfer source lacks balance.
	ErrInsufficientFunds = New("insufficient funds")

	// ErrUnauthorized caller is not allowed to perform an administrative operation.
	ErrUnauthorized = New("unauthorized")

	// ErrUnknownPool the pool id is not registered.
	ErrUnknownPool = New("unknown pool")
)
