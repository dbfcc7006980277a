package main

import (
	"github.com/tessera-chain/tessera/cmd/flags"
	"github.com/urfave/cli/v2"
)

var (
	verbosity string
	logFormat string
	network   string
)

var (
	// VerbosityFlag defines the logrus configuration.
	VerbosityFlag = flags.EnumValue{
		Name:        "verbosity",
		Usage:       "Logging verbosity (trace, debug, info, warn, error, fatal, panic)",
		Destination: &verbosity,
		Enum:        []string{"trace", "debug", "info", "warn", "error", "fatal", "panic"},
		Value:       "info",
	}.GenericFlag()
	// LogFormat specifies the log output format.
	LogFormat = flags.EnumValue{
		Name:        "log-format",
		Usage:       "Specify log formatting",
		Destination: &logFormat,
		Enum:        []string{"text", "json"},
		Value:       "text",
	}.GenericFlag()
	// LogFileName specifies the log output file name.
	LogFileName = &cli.StringFlag{
		Name:  "log-file",
		Usage: "Specify log file name, relative or absolute",
	}
	// ConfigNameFlag selects a built-in chain config.
	ConfigNameFlag = flags.EnumValue{
		Name:        "config-name",
		Usage:       "Built-in chain config to simulate",
		Destination: &network,
		Enum:        []string{"mainnet", "minimal"},
		Value:       "minimal",
	}.GenericFlag()
	// ChainConfigFileFlag loads a yaml chain config, overriding --config-name.
	ChainConfigFileFlag = &cli.StringFlag{
		Name:  "chain-config-file",
		Usage: "The path to a YAML file with chain config values",
	}
	// DataDirFlag enables persistence of the simulated chain.
	DataDirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the consensus database. The simulation runs in memory when unset",
	}
	// ClearDBFlag wipes the database before the run.
	ClearDBFlag = &cli.BoolFlag{
		Name:  "clear-db",
		Usage: "Clears any previously stored data at the data directory",
	}
	// ValidatorsFlag sets the size of the genesis validator set.
	ValidatorsFlag = &cli.IntFlag{
		Name:  "validators",
		Usage: "Number of genesis validators",
		Value: 8,
	}
	// StakeFlag sets the stake of every genesis validator.
	StakeFlag = &cli.Uint64Flag{
		Name:  "stake",
		Usage: "Stake of every genesis validator. Defaults to twice the minimum validator stake",
	}
	// SlotsFlag sets the number of slots to simulate.
	SlotsFlag = &cli.Uint64Flag{
		Name:  "slots",
		Usage: "Number of slots to simulate",
		Value: 64,
	}
	// ForkEveryFlag injects a competing block every N slots.
	ForkEveryFlag = &cli.Uint64Flag{
		Name:  "fork-every",
		Usage: "Produce a competing block on the head's parent every N slots, 0 disables forks",
	}
	// DoubleSignAtFlag injects a double sign and reports it.
	DoubleSignAtFlag = &cli.Uint64Flag{
		Name:  "double-sign-at",
		Usage: "Slot at which the elected producer signs two blocks and evidence is queued, 0 disables",
	}
	// SlotDurationFlag paces the simulation in real time.
	SlotDurationFlag = &cli.DurationFlag{
		Name:  "slot-duration",
		Usage: "Wall-clock length of a slot, 0 simulates as fast as possible",
	}
	// SeedFlag seeds the epoch randomness.
	SeedFlag = &cli.StringFlag{
		Name:  "seed",
		Usage: "Seed for the simulated randomness beacon",
		Value: "tessera",
	}
	// MonitoringFlag serves metrics while the simulation runs.
	MonitoringFlag = &cli.BoolFlag{
		Name:  "monitoring",
		Usage: "Serve /metrics and /healthz while simulating",
	}
	// MonitoringHostFlag defines the host used to serve prometheus metrics.
	MonitoringHostFlag = &cli.StringFlag{
		Name:  "monitoring-host",
		Usage: "Host used for listening and responding metrics for prometheus",
		Value: "127.0.0.1",
	}
	// MonitoringPortFlag defines the http port used to serve prometheus metrics.
	MonitoringPortFlag = &cli.IntFlag{
		Name:  "monitoring-port",
		Usage: "Port used for listening and responding metrics for prometheus",
		Value: 8080,
	}
)

var appFlags = []cli.Flag{
	VerbosityFlag,
	LogFormat,
	LogFileName,
	ConfigNameFlag,
	ChainConfigFileFlag,
	DataDirFlag,
	ClearDBFlag,
	ValidatorsFlag,
	StakeFlag,
	SlotsFlag,
	ForkEveryFlag,
	DoubleSignAtFlag,
	SlotDurationFlag,
	SeedFlag,
	MonitoringFlag,
	MonitoringHostFlag,
	MonitoringPortFlag,
}
