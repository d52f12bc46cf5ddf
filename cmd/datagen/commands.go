package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/synaptica-ai/hospital-charges/pkg/common/config"
	"github.com/synaptica-ai/hospital-charges/pkg/common/database"
	"github.com/synaptica-ai/hospital-charges/pkg/common/httpclient"
	"github.com/synaptica-ai/hospital-charges/pkg/common/kafka"
	"github.com/synaptica-ai/hospital-charges/pkg/common/logger"
	"github.com/synaptica-ai/hospital-charges/pkg/datagen"
	"github.com/synaptica-ai/hospital-charges/pkg/storage"
	"github.com/urfave/cli/v3"
)

var CmdGenerate = &cli.Command{
	Name:    "generate",
	Aliases: []string{"run"},
	Usage:   "Generate the original dataset and try to expand it",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "profile",
			Sources: cli.EnvVars("DATAGEN_PROFILE"),
			Usage:   "YAML run profile; flags override its values",
		},
		&cli.IntFlag{
			Name:  "samples",
			Usage: "number of original rows",
		},
		&cli.Int64Flag{
			Name:  "seed",
			Usage: "random seed",
		},
		&cli.IntFlag{
			Name:  "scale",
			Usage: "synthetic rows per original row",
		},
		&cli.StringFlag{
			Name:  "out-dir",
			Usage: "directory for the CSV files",
		},
		&cli.BoolFlag{
			Name:  "skip-expansion",
			Usage: "only write the original dataset",
		},
	},
	Action: generate,
}

var CmdSummarize = &cli.Command{
	Name:      "summarize",
	Usage:     "Print the summary report of an existing dataset CSV",
	ArgsUsage: "<file.csv>",
	Action:    summarize,
}

func generate(ctx context.Context, cmd *cli.Command) error {
	profile, err := datagen.LoadProfile(cmd.String("profile"))
	if err != nil {
		return err
	}
	applyFlags(cmd, &profile)

	cfg := config.Load()
	opts, cleanup := pipelineOptions(cfg)
	defer cleanup()

	report, err := datagen.NewPipeline(synthesizer(cfg), opts...).Run(ctx, profile)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}
	return printReport(out, report)
}

func printReport(out io.Writer, report datagen.Report) error {
	if err := datagen.WriteSummary(out, "Original Data", report.Original); err != nil {
		return err
	}
	if !report.Expanded {
		if report.Profile.SkipExpansion {
			fmt.Fprintf(out, "\nSynthetic expansion skipped as requested\n")
		} else {
			fmt.Fprintf(out, "\nData could not be expanded: %s\n", report.ExpansionError)
		}
		fmt.Fprintf(out, "Original data saved to %s\n", report.OriginalPath)
		return nil
	}
	if err := datagen.WriteSummary(out, "Synthetic Data", *report.Synthetic); err != nil {
		return err
	}
	if err := datagen.WriteComparison(out, *report.Comparison, *report.Synthetic); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nOriginal data saved to %s\nSynthetic data saved to %s\n", report.OriginalPath, report.SyntheticPath)
	return nil
}

func summarize(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("a CSV path is required")
	}
	records, err := datagen.ReadCSVFile(path)
	if err != nil {
		return err
	}
	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}
	return datagen.WriteSummary(out, path, datagen.Summarize(records))
}

func applyFlags(cmd *cli.Command, profile *datagen.Profile) {
	if cmd.IsSet("samples") {
		profile.Samples = int(cmd.Int("samples"))
	}
	if cmd.IsSet("seed") {
		profile.Seed = cmd.Int64("seed")
	}
	if cmd.IsSet("scale") {
		profile.Scale = int(cmd.Int("scale"))
	}
	if cmd.IsSet("out-dir") {
		profile.OutputDir = cmd.String("out-dir")
	}
	if cmd.IsSet("skip-expansion") {
		profile.SkipExpansion = cmd.Bool("skip-expansion")
	}
}

func synthesizer(cfg *config.Config) datagen.Synthesizer {
	if cfg.SynthesizerURL == "" {
		return datagen.Unavailable{Reason: "SYNTHESIZER_URL is not set"}
	}
	client := httpclient.New(cfg.SynthesizerTimeout)
	return datagen.NewRemoteSynthesizer(cfg.SynthesizerURL, client, cfg.SynthesizerRetries)
}

// pipelineOptions connects the optional Postgres sink and Kafka publisher.
// Either one failing to come up only disables that integration.
func pipelineOptions(cfg *config.Config) ([]datagen.PipelineOption, func()) {
	var opts []datagen.PipelineOption
	var closers []func()

	if cfg.PersistDatasets {
		db, err := database.OpenPostgres(cfg)
		if err != nil {
			logger.Log.WithError(err).Warn("Dataset persistence disabled; Postgres is unreachable")
		} else {
			store := storage.NewDatasetStore(db)
			if err := store.AutoMigrate(); err != nil {
				logger.Log.WithError(err).Warn("Dataset persistence disabled; migration failed")
				database.ClosePostgres(db)
			} else {
				opts = append(opts, datagen.WithSink(store))
				closers = append(closers, func() { database.ClosePostgres(db) })
			}
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.DatasetTopic)
		opts = append(opts, datagen.WithPublisher(producer))
		closers = append(closers, func() { producer.Close() })
	}

	return opts, func() {
		for _, c := range closers {
			c()
		}
	}
}
