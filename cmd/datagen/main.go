package main

import (
	"context"
	"os"

	"github.com/synaptica-ai/hospital-charges/pkg/common/logger"
	"github.com/urfave/cli/v3"
)

func main() {
	logger.Init()

	app := &cli.Command{
		Name:  "datagen",
		Usage: "Synthetic hospital-charges dataset generator",
		Commands: []*cli.Command{
			CmdGenerate,
			CmdSummarize,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Log.WithError(err).Fatal("datagen failed")
	}
}
