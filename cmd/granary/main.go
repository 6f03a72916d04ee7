// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/granarylabs/granary/api"
	"github.com/granarylabs/granary/builtin/farm"
	"github.com/granarylabs/granary/builtin/slot"
	"github.com/granarylabs/granary/builtin/token"
	"github.com/granarylabs/granary/granary"
	"github.com/granarylabs/granary/log"
	"github.com/granarylabs/granary/metrics"
	"github.com/granarylabs/granary/state"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Granary",
		Usage:     "Time-weighted staking and reward accrual service",
		Copyright: "2025 Granary Labs",
		Flags: []cli.Flag{
			dataDirFlag,
			genesisFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiEventsLimitFlag,
			apiLogsFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	genesisPath := ctx.String(genesisFlag.Name)
	if genesisPath == "" {
		fatal(fmt.Sprintf("the -%s flag is required", genesisFlag.Name))
	}
	config, err := loadGenesisConfig(genesisPath)
	if err != nil {
		fatal(err)
	}

	dataDir := makeDataDir(ctx)

	mainDB := openMainDB(dataDir)
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	eventDB := openEventDB(dataDir)
	defer func() { logger.Info("closing event database..."); eventDB.Close() }()

	st := state.New(mainDB)
	ledger := token.New(granary.LedgerModuleAddress, st)

	disburser, err := newDisburser(config, ledger)
	if err != nil {
		fatal(err)
	}
	farmSvc := farm.New(slot.NewContext(granary.FarmModuleAddress, st), ledger, disburser)
	farmSvc.OnEvent(eventDB)

	if err := seedGenesisState(farmSvc, ledger, config); err != nil {
		fatal(err)
	}

	now := func() uint64 { return uint64(time.Now().Unix()) }
	apiHandler := api.New(farmSvc, eventDB, now, farmSvc.Commit, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		EventsLimit:     ctx.Uint64(apiEventsLimitFlag.Name),
		EnableReqLogger: ctx.Bool(apiLogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	})

	return serve(ctx, apiHandler)
}

// newDisburser picks the reward payment strategy of the config.
func newDisburser(config *genesisConfig, ledger *token.Ledger) (farm.Disburser, error) {
	rewardAsset, err := parseAddress(config.Disbursement.RewardAsset, "disbursement.rewardAsset")
	if err != nil {
		return nil, err
	}
	if config.Disbursement.Strategy == "reserve" {
		reserve, err := parseAddress(config.Disbursement.Reserve, "disbursement.reserve")
		if err != nil {
			return nil, err
		}
		return token.NewReserve(ledger, rewardAsset, reserve), nil
	}
	return token.NewMinter(ledger, rewardAsset), nil
}

// seedGenesisState initializes the farm on first run. An already
// initialized data dir is left untouched.
func seedGenesisState(farmSvc *farm.Farm, ledger *token.Ledger, config *genesisConfig) error {
	current, err := farmSvc.Admin()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		logger.Info("ledger already initialized", "admin", current)
		return nil
	}

	admin, err := parseAddress(config.Admin, "admin")
	if err != nil {
		return err
	}
	feeRecipient, err := parseAddress(config.FeeRecipient, "feeRecipient")
	if err != nil {
		return err
	}
	rate, err := parseAmount(config.Emission.RatePerSecond, "emission.ratePerSecond")
	if err != nil {
		return err
	}
	if err := farmSvc.Initialize(admin, feeRecipient, config.Emission.Start, config.Emission.End, rate); err != nil {
		return err
	}

	for i, p := range config.Premine {
		field := fmt.Sprintf("premine[%d]", i)
		asset, err := parseAddress(p.Asset, field+".asset")
		if err != nil {
			return err
		}
		holder, err := parseAddress(p.Holder, field+".holder")
		if err != nil {
			return err
		}
		amount, err := parseAmount(p.Amount, field+".amount")
		if err != nil {
			return err
		}
		if err := ledger.Mint(asset, holder, amount); err != nil {
			return err
		}
	}

	now := uint64(time.Now().Unix())
	for i, p := range config.Pools {
		asset, err := parseAddress(p.StakedAsset, fmt.Sprintf("pools[%d].stakedAsset", i))
		if err != nil {
			return err
		}
		id, err := farmSvc.AddPool(
			admin,
			asset,
			new(big.Int).SetInt64(p.Weight),
			p.StartHint,
			p.DepositTaxBps,
			p.SubscriptionRateBps,
			false,
			now,
		)
		if err != nil {
			return err
		}
		logger.Info("genesis pool added", "pool", id, "asset", asset)
	}

	return farmSvc.Commit()
}

// serve runs the API and metrics servers until an exit signal arrives.
func serve(ctx *cli.Context, apiHandler http.HandlerFunc) error {
	signalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiSrv := &http.Server{Addr: ctx.String(apiAddrFlag.Name), Handler: apiHandler}

	var metricsSrv *http.Server
	if ctx.Bool(enableMetricsFlag.Name) {
		metricsSrv = &http.Server{Addr: ctx.String(metricsAddrFlag.Name), Handler: metrics.HTTPHandler()}
	}

	var group errgroup.Group
	group.Go(func() error {
		logger.Info("API server started", "addr", apiSrv.Addr)
		if err := apiSrv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	if metricsSrv != nil {
		group.Go(func() error {
			logger.Info("metrics server started", "addr", metricsSrv.Addr)
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}
	group.Go(func() error {
		<-signalCtx.Done()
		logger.Info("exit signal received, shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		return apiSrv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
