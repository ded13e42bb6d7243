package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/inventorykit/replenish/internal/batch"
	"github.com/inventorykit/replenish/internal/config"
	"github.com/inventorykit/replenish/internal/domain"
	"github.com/inventorykit/replenish/internal/leadtime"
	"github.com/inventorykit/replenish/pkg/logger"
)

func newSnapshotFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "snapshot",
		Usage:    "Path to the item snapshot JSON file",
		Required: true,
		EnvVars:  []string{"REPLENISH_SNAPSHOT"},
	}
}

func newOutputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Usage:   "Output file path (stdout when empty)",
		EnvVars: []string{"REPLENISH_OUTPUT"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "replenish",
		Usage: "Replenishment decisioning over item snapshots",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (trace, debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "period-end",
				Usage: "Run the full period-end pass: reforecast, lead times, order points",
				Flags: []cli.Flag{
					newSnapshotFlag(),
					newOutputFlag(),
					&cli.IntFlag{
						Name:    "workers",
						Usage:   "Concurrent item workers",
						EnvVars: []string{"BATCH_WORKERS"},
					},
				},
				Action: runPeriodEnd,
			},
			{
				Name:  "lead-time",
				Usage: "Resolve lead time forecasts only",
				Flags: []cli.Flag{
					newSnapshotFlag(),
					newOutputFlag(),
				},
				Action: runLeadTime,
			},
			{
				Name:  "order-points",
				Usage: "Recompute order points and order quantities without reforecasting",
				Flags: []cli.Flag{
					newSnapshotFlag(),
					newOutputFlag(),
					&cli.IntFlag{
						Name:    "workers",
						Usage:   "Concurrent item workers",
						EnvVars: []string{"BATCH_WORKERS"},
					},
					&cli.BoolFlag{
						Name:    "forward-buy",
						Usage:   "Top suggested orders up to the forward-buy window",
						EnvVars: []string{"BATCH_FORWARD_BUY"},
					},
				},
				Action: runOrderPoints,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}

func runPeriodEnd(c *cli.Context) error {
	cfg := config.Load()
	if w := c.Int("workers"); w > 0 {
		cfg.Batch.Workers = w
	}

	snap, err := batch.LoadSnapshot(c.String("snapshot"))
	if err != nil {
		return err
	}

	runner := batch.NewRunner(cfg, snap.ProfileMap())
	results, summary := runner.Run(c.Context, snap.Items)

	return batch.WriteOutput(c.String("output"), batch.Output{
		Summary: summary,
		Results: results,
	})
}

func runOrderPoints(c *cli.Context) error {
	cfg := config.Load()
	if w := c.Int("workers"); w > 0 {
		cfg.Batch.Workers = w
	}
	if c.Bool("forward-buy") {
		cfg.Batch.ForwardBuy = true
	}

	snap, err := batch.LoadSnapshot(c.String("snapshot"))
	if err != nil {
		return err
	}

	// Freeze every forecast so the run sizes orders off the stored
	// values without touching them.
	items := make([]domain.Item, len(snap.Items))
	copy(items, snap.Items)
	far := farFuture()
	for i := range items {
		items[i].Forecast.FreezeUntil = &far
	}

	runner := batch.NewRunner(cfg, snap.ProfileMap())
	results, summary := runner.Run(c.Context, items)

	return batch.WriteOutput(c.String("output"), batch.Output{
		Summary: summary,
		Results: results,
	})
}

func runLeadTime(c *cli.Context) error {
	cfg := config.Load()

	snap, err := batch.LoadSnapshot(c.String("snapshot"))
	if err != nil {
		return err
	}

	engine := leadtime.NewEngine(cfg.LeadTime)

	type row struct {
		SKU      string                  `json:"sku"`
		Location string                  `json:"location"`
		LeadTime domain.LeadTimeForecast `json:"lead_time"`
	}
	rows := make([]row, len(snap.Items))
	for i, item := range snap.Items {
		rows[i] = row{
			SKU:      item.SKU,
			Location: item.Location,
			LeadTime: engine.Forecast(leadtime.Input{
				Override:     item.LeadTimeOverride,
				Receipts:     item.Receipts,
				SupplierDays: item.SupplierLeadTime,
			}),
		}
	}

	data, err := jsonIndent(rows)
	if err != nil {
		return err
	}
	if out := c.String("output"); out != "" {
		return os.WriteFile(out, data, 0644)
	}
	_, err = fmt.Fprint(os.Stdout, string(data))
	return err
}

func jsonIndent(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func farFuture() time.Time {
	return time.Now().AddDate(100, 0, 0)
}
