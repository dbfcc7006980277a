// Package main runs a simulated tessera chain: elected producers extend the chain slot by
// slot while the consensus core rotates validators, applies slashing and finalizes blocks.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/tessera-chain/tessera/io/logs"
	"github.com/tessera-chain/tessera/monitoring/prometheus"
	"github.com/urfave/cli/v2"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	_ "go.uber.org/automaxprocs"
)

var log = logrus.WithField("prefix", "main")

func main() {
	app := cli.App{}
	app.Name = "tessera-sim"
	app.Usage = "simulates block production against the tessera consensus core"
	app.Flags = appFlags
	app.Action = runSimulation
	app.Before = func(ctx *cli.Context) error {
		level, err := logrus.ParseLevel(verbosity)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)

		switch logFormat {
		case "text":
			formatter := new(prefixed.TextFormatter)
			formatter.TimestampFormat = "2006-01-02 15:04:05"
			formatter.FullTimestamp = true
			// ANSI colors are noise in log files.
			formatter.DisableColors = ctx.String(LogFileName.Name) != ""
			logrus.SetFormatter(formatter)
		case "json":
			logrus.SetFormatter(&logrus.JSONFormatter{})
		default:
			return fmt.Errorf("unknown log format %s", logFormat)
		}
		logrus.AddHook(prometheus.NewLogrusCollector())

		if name := ctx.String(LogFileName.Name); name != "" {
			if err := logs.ConfigurePersistentLogging(name); err != nil {
				log.WithError(err).Error("Failed to configure logging to disk")
			}
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
