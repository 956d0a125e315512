package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"slimpdf/internal/compression"
	"slimpdf/internal/config"
	"slimpdf/internal/database"
	"slimpdf/internal/logging"
	"slimpdf/internal/services"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	app := &cli.App{
		Name:      "slimpdf",
		Usage:     "compress PDF files, keeping the leading pages readable",
		ArgsUsage: "INPUT OUTPUT",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
			&cli.Float64Flag{
				Name:    "target-size-mb",
				Aliases: []string{"t"},
				Value:   cfg.Defaults.TargetSizeMB,
				Usage:   "target output size in MB (0 disables the size search)",
			},
			&cli.IntFlag{
				Name:    "important-pages",
				Aliases: []string{"p"},
				Value:   cfg.Defaults.ImportantPages,
				Usage:   "number of leading pages kept at high quality",
			},
			&cli.IntFlag{
				Name:  "first-page-quality",
				Value: cfg.Defaults.FirstPageQuality,
				Usage: "JPEG quality for important pages (1-100)",
			},
			&cli.IntFlag{
				Name:  "remaining-quality",
				Value: cfg.Defaults.RemainingQuality,
				Usage: "JPEG quality for remaining pages (1-100)",
			},
			&cli.IntFlag{
				Name:  "first-page-dpi",
				Value: cfg.Defaults.FirstPageDPI,
				Usage: "rasterization DPI for important pages",
			},
			&cli.IntFlag{
				Name:  "remaining-dpi",
				Value: cfg.Defaults.RemainingDPI,
				Usage: "rasterization DPI for remaining pages",
			},
		},
		Action: func(c *cli.Context) error {
			return compressAction(c, cfg)
		},
		Commands: []*cli.Command{
			{
				Name:      "batch",
				Usage:     "compress every PDF in a directory",
				ArgsUsage: "DIR OUTDIR",
				Action: func(c *cli.Context) error {
					return batchAction(c, cfg)
				},
			},
			{
				Name:  "stats",
				Usage: "show accumulated compression statistics",
				Action: func(c *cli.Context) error {
					return statsAction(cfg)
				},
			},
		},
	}

	return app.Run(args)
}

func compressAction(c *cli.Context, cfg *config.Config) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: slimpdf [options] INPUT OUTPUT", 2)
	}

	logger := logging.New(c.Bool("verbose"))
	compressor := compression.NewCompressor(cfg.MagickPath, cfg.WorkingDir, logger)
	req := requestFromFlags(c, cfg, c.Args().Get(0), c.Args().Get(1))

	result, err := compressor.Compress(req)
	if err != nil {
		return err
	}

	recordHistory(cfg, logger, result, req.InputPath)

	fmt.Printf("Compressed %s: %.2f MB -> %.2f MB (%.1f%% saved), quality %d\n",
		req.InputPath, mb(result.OriginalSize), mb(result.CompressedSize),
		result.CompressionRatio, result.QualityUsed)
	return nil
}

func batchAction(c *cli.Context, cfg *config.Config) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: slimpdf batch DIR OUTDIR", 2)
	}

	logger := logging.New(c.Bool("verbose"))
	compressor := compression.NewCompressor(cfg.MagickPath, cfg.WorkingDir, logger)

	var history *services.HistoryService
	if db, err := database.Initialize(cfg.DatabasePath); err == nil {
		history = services.NewHistoryService(db)
	} else {
		logger.WithError(err).Warn("History database unavailable")
	}

	batch := services.NewBatchService(compressor, history, logger)
	settings := requestFromFlags(c, cfg, "", "")

	result, err := batch.CompressDirectory(context.Background(), c.Args().Get(0), c.Args().Get(1), settings)
	if err != nil {
		return err
	}

	failed := 0
	for _, file := range result.Results {
		if file.Status == "error" {
			failed++
			fmt.Fprintf(os.Stderr, "  %s: %s\n", file.OriginalFilename, file.Error)
		} else {
			fmt.Printf("  %s: %.2f MB -> %.2f MB (%.1f%% saved)\n",
				file.OriginalFilename, mb(file.OriginalSize), mb(file.CompressedSize), file.CompressionRatio)
		}
	}
	fmt.Printf("Compressed %d files, %.1f%% saved overall\n", result.TotalFiles, result.OverallCompressionRatio)

	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d files failed", failed, result.TotalFiles), 1)
	}
	return nil
}

func statsAction(cfg *config.Config) error {
	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}

	totals, err := services.NewHistoryService(db).Totals()
	if err != nil {
		return err
	}

	fmt.Printf("Files compressed: %d\n", totals.FilesCompressed)
	fmt.Printf("Original size:    %.2f MB\n", mb(totals.OriginalBytes))
	fmt.Printf("Compressed size:  %.2f MB\n", mb(totals.CompressedBytes))
	fmt.Printf("Space saved:      %.2f MB\n", mb(totals.BytesSaved))
	return nil
}

// requestFromFlags merges the configured defaults with CLI flag overrides.
func requestFromFlags(c *cli.Context, cfg *config.Config, inputPath, outputPath string) compression.Request {
	req := cfg.Request(inputPath, outputPath)
	req.TargetSizeMB = c.Float64("target-size-mb")
	req.ImportantPages = c.Int("important-pages")
	req.FirstPageQuality = c.Int("first-page-quality")
	req.RemainingQuality = c.Int("remaining-quality")
	req.FirstPageDPI = c.Int("first-page-dpi")
	req.RemainingDPI = c.Int("remaining-dpi")
	return req
}

// recordHistory persists a result, best effort. A broken history database
// never fails a compression that already succeeded.
func recordHistory(cfg *config.Config, logger *logrus.Logger, result *compression.Result, inputPath string) {
	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		logger.WithError(err).Warn("History database unavailable")
		return
	}
	if err := services.NewHistoryService(db).Record(result, inputPath); err != nil {
		logger.WithError(err).Warn("Failed to record compression history")
	}
}

func mb(bytes int64) float64 {
	return float64(bytes) / 1024 / 1024
}
