// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/granarylabs/granary/granary"
)

// genesisConfig is the yaml form of the ledger's initial state.
type genesisConfig struct {
	Admin        string `yaml:"admin"`
	FeeRecipient string `yaml:"feeRecipient"`

	Emission struct {
		Start         uint64 `yaml:"start"`
		End           uint64 `yaml:"end"`
		RatePerSecond string `yaml:"ratePerSecond"`
	} `yaml:"emission"`

	Disbursement struct {
		Strategy    string `yaml:"strategy"` // mint | reserve
		RewardAsset string `yaml:"rewardAsset"`
		Reserve     string `yaml:"reserve"`
	} `yaml:"disbursement"`

	Pools []struct {
		StakedAsset         string `yaml:"stakedAsset"`
		Weight              int64  `yaml:"weight"`
		StartHint           uint64 `yaml:"startHint"`
		DepositTaxBps       uint64 `yaml:"depositTaxBps"`
		SubscriptionRateBps uint64 `yaml:"subscriptionRateBps"`
	} `yaml:"pools"`

	Premine []struct {
		Asset  string `yaml:"asset"`
		Holder string `yaml:"holder"`
		Amount string `yaml:"amount"`
	} `yaml:"premine"`
}

func loadGenesisConfig(path string) (*genesisConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessage(err, "read genesis config")
	}
	var config genesisConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.WithMessage(err, "parse genesis config")
	}
	if config.Disbursement.Strategy == "" {
		config.Disbursement.Strategy = "mint"
	}
	if config.Disbursement.Strategy != "mint" && config.Disbursement.Strategy != "reserve" {
		return nil, errors.Errorf("unknown disbursement strategy %q", config.Disbursement.Strategy)
	}
	return &config, nil
}

func parseAddress(s, field string) (granary.Address, error) {
	addr, err := granary.ParseAddress(s)
	if err != nil {
		return granary.Address{}, errors.WithMessage(err, field)
	}
	return *addr, nil
}

func parseAmount(s, field string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, errors.Errorf("%s: invalid amount %q", field, s)
	}
	return v, nil
}
