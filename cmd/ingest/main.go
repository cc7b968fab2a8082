// Command ingest downloads one NYC taxi dataset and bulk-loads it into PostgreSQL.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JonMunkholm/nyctaxi/internal/config"
	"github.com/JonMunkholm/nyctaxi/internal/core"
	_ "github.com/JonMunkholm/nyctaxi/internal/core/datasets" // Register all datasets
	"github.com/JonMunkholm/nyctaxi/internal/logging"
	"github.com/JonMunkholm/nyctaxi/internal/sink"
	"github.com/JonMunkholm/nyctaxi/internal/source"
	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const description = "Download NYC taxi trip data or the zone lookup and load it into PostgreSQL."

func main() {
	// A .env file is optional; real environment variables take precedence.
	envErr := godotenv.Load()

	var cli CLI
	kong.Parse(&cli,
		kong.Name("ingest"),
		kong.Description(description),
		kong.UsageOnError(),
	)

	cfg, err := loadConfig(cli.Overrides())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if envErr == nil {
		slog.Debug("loaded .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		reportError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the environment, applies flag overrides and validates the result.
func loadConfig(o config.Overrides) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Apply(o)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx = logging.WithRun(ctx, uuid.NewString())
	logger := logging.FromContext(ctx)

	logger.Debug("configuration loaded", "config", cfg.String())

	pool, err := sink.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	logger.Info("connected to database",
		"host", cfg.Database.Host,
		"name", cfg.Database.Name,
	)

	svc := core.NewService(
		sink.New(pool),
		source.New(cfg.Source.HTTPTimeout, cfg.Source.UserAgent),
		core.BasesFromConfig(cfg),
	)
	svc.OnProgress(logProgress(logger))

	result, err := svc.Run(ctx, core.JobFromConfig(cfg))
	if err != nil {
		return err
	}

	logger.Info("finished",
		"table", result.Table,
		"rows", result.Inserted,
		"chunks", result.Chunks,
		"duration", result.Duration.Round(time.Millisecond),
	)
	return nil
}

// logProgress reports each inserted chunk at info level; the service logs
// the other phases itself.
func logProgress(logger *slog.Logger) core.ProgressCallback {
	return func(p core.IngestProgress) {
		if p.Phase != core.PhaseInserting {
			return
		}
		logger.Info("inserted chunk",
			"chunk", p.Chunk,
			"rows", p.Rows,
			"total", p.Inserted,
		)
	}
}

// reportError writes the underlying error and, when it maps to a known
// failure, the user-facing explanation.
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "ingest: %v\n", err)
	if core.IsUserFacing(err) {
		fmt.Fprintln(w, core.FormatUserError(err))
	}
}
