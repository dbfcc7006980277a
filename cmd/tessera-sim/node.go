package main

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tessera-chain/tessera/config/params"
	"github.com/tessera-chain/tessera/consensus-types/blocks"
	"github.com/tessera-chain/tessera/consensus/db"
	"github.com/tessera-chain/tessera/consensus/engine"
	"github.com/tessera-chain/tessera/crypto/hash"
	"github.com/tessera-chain/tessera/monitoring/prometheus"
	"github.com/tessera-chain/tessera/runtime"
	"github.com/urfave/cli/v2"
)

func runSimulation(cliCtx *cli.Context) error {
	ctx, cancel := context.WithCancel(cliCtx.Context)
	defer cancel()

	cfg, err := chainConfig(cliCtx)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"config":        cfg.ConfigName,
		"slotsPerEpoch": cfg.SlotsPerEpoch,
		"minStake":      cfg.MinValidatorStake,
	}).Info("Loaded chain config")

	stake := cliCtx.Uint64(StakeFlag.Name)
	if stake == 0 {
		stake = 2 * cfg.MinValidatorStake
	}
	opts := []engine.Option{
		engine.WithChainConfig(cfg),
		engine.WithRandomnessSource(engine.SeededRandomness(hash.Hash([]byte(cliCtx.String(SeedFlag.Name))))),
		engine.WithGenesis(genesisHeader(), genesisValidators(cliCtx.Int(ValidatorsFlag.Name), stake)),
	}
	if dir := cliCtx.String(DataDirFlag.Name); dir != "" {
		store, err := openDB(ctx, dir, cliCtx.Bool(ClearDBFlag.Name))
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.WithError(err).Error("Could not close database")
			}
		}()
		opts = append(opts, engine.WithDatabase(store))
	}

	svc, err := engine.NewService(ctx, opts...)
	if err != nil {
		return errors.Wrap(err, "could not start consensus engine")
	}
	registry := runtime.NewServiceRegistry()
	if err := registry.RegisterService(svc); err != nil {
		return err
	}
	if cliCtx.Bool(MonitoringFlag.Name) {
		addr := fmt.Sprintf("%s:%d", cliCtx.String(MonitoringHostFlag.Name), cliCtx.Int(MonitoringPortFlag.Name))
		if err := registry.RegisterService(prometheus.NewService(addr, registry)); err != nil {
			return err
		}
	}
	registry.StartAll()

	sim := newSimulator(svc, cfg, simOptions{
		slots:        cliCtx.Uint64(SlotsFlag.Name),
		forkEvery:    cliCtx.Uint64(ForkEveryFlag.Name),
		doubleSignAt: cliCtx.Uint64(DoubleSignAtFlag.Name),
		slotDuration: cliCtx.Duration(SlotDurationFlag.Name),
	})
	runErr := sim.run(ctx)
	stopErr := registry.StopAll()
	sim.report(ctx)
	if runErr != nil {
		return runErr
	}
	return stopErr
}

func chainConfig(cliCtx *cli.Context) (*params.ConsensusConfig, error) {
	if name := cliCtx.String(ChainConfigFileFlag.Name); name != "" {
		return params.LoadChainConfigFile(name)
	}
	cfg, ok := params.ByName(network)
	if !ok {
		return nil, errors.Errorf("unknown config name %q", network)
	}
	params.OverrideConsensusConfig(cfg)
	return cfg, nil
}

func openDB(ctx context.Context, dir string, clear bool) (db.Database, error) {
	store, err := db.NewDB(ctx, dir)
	if err != nil {
		return nil, errors.Wrap(err, "could not open database")
	}
	if !clear {
		return store, nil
	}
	log.WithField("path", dir).Warn("Removing database")
	if err := store.ClearDB(); err != nil {
		return nil, errors.Wrap(err, "could not clear database")
	}
	if err := store.Close(); err != nil {
		return nil, err
	}
	return db.NewDB(ctx, dir)
}

func genesisHeader() *blocks.Header {
	return blocks.NewHeader(common.Hash{}, 0, 0, common.Address{}, []byte("tessera genesis"))
}

// genesisValidators returns n validators with deterministic addresses and equal stake.
func genesisValidators(n int, stake uint64) []engine.GenesisValidator {
	vals := make([]engine.GenesisValidator, n)
	for i := range vals {
		vals[i] = engine.GenesisValidator{
			Address: common.BigToAddress(big.NewInt(int64(i) + 1)),
			Stake:   uint256.NewInt(stake),
		}
	}
	return vals
}
