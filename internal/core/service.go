package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/nyctaxi/internal/config"
	"github.com/JonMunkholm/nyctaxi/internal/logging"
	"github.com/google/uuid"
)

// DefaultParquetBatchSize is the number of rows per COPY when writing Parquet data.
const DefaultParquetBatchSize = 50000

// Service runs ingest jobs against a sink, reading sources through a fetcher.
type Service struct {
	sink     Sink
	fetcher  Fetcher
	bases    SourceBases
	progress ProgressCallback
}

// NewService creates a new Service instance.
func NewService(sink Sink, fetcher Fetcher, bases SourceBases) *Service {
	return &Service{
		sink:    sink,
		fetcher: fetcher,
		bases:   bases,
	}
}

// OnProgress registers cb to receive progress updates. Passing nil disables them.
func (s *Service) OnProgress(cb ProgressCallback) {
	s.progress = cb
}

// JobFromConfig builds a job from validated configuration.
func JobFromConfig(cfg *config.Config) Job {
	return Job{
		Dataset:          Dataset(cfg.Ingest.Dataset),
		Format:           Format(cfg.Ingest.Format),
		Year:             cfg.Ingest.Year,
		Month:            cfg.Ingest.Month,
		ChunkSize:        cfg.Ingest.ChunkSize,
		TargetTable:      cfg.Ingest.TargetTable,
		ParquetBatchSize: cfg.Ingest.ParquetBatchSize,
	}
}

// BasesFromConfig returns the URL roots configured in cfg.
func BasesFromConfig(cfg *config.Config) SourceBases {
	return SourceBases{
		CSV:        cfg.Source.CSVBaseURL,
		Parquet:    cfg.Source.ParquetBaseURL,
		ZoneLookup: cfg.Source.ZoneLookupURL,
	}
}

// IsTripData reports whether the job loads yellow or green trips.
func (j Job) IsTripData() bool {
	return j.Dataset == DatasetYellow || j.Dataset == DatasetGreen
}

// Validate checks that the job names everything its dataset needs.
func (j Job) Validate() error {
	if _, ok := Get(j.Dataset); !ok {
		return fmt.Errorf("%w: %q (known: %s)", ErrUnknownDataset, j.Dataset, knownDatasets())
	}
	if j.TargetTable == "" {
		return fmt.Errorf("%w: target table is required", ErrInvalidJob)
	}
	if !j.IsTripData() {
		return nil
	}
	if j.Year <= 0 {
		return fmt.Errorf("%w: year is required for %s", ErrInvalidJob, j.Dataset)
	}
	if j.Month < 1 || j.Month > 12 {
		return fmt.Errorf("%w: month must be 1-12, got %d", ErrInvalidJob, j.Month)
	}
	switch j.Format {
	case FormatCSV:
		if j.ChunkSize <= 0 {
			return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidJob, j.ChunkSize)
		}
	case FormatParquet:
		if j.ParquetBatchSize < 0 {
			return fmt.Errorf("%w: parquet batch size must be positive, got %d", ErrInvalidJob, j.ParquetBatchSize)
		}
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidJob, j.Format)
	}
	return nil
}

// Run executes job: resolves its URL, then loads it with the routine its
// dataset and format select. The returned result is non-nil even on error and
// reports how far the run got.
func (s *Service) Run(ctx context.Context, job Job) (*IngestResult, error) {
	runID := logging.RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = logging.WithRun(ctx, runID)
	}

	start := time.Now()
	result := &IngestResult{
		RunID:   runID,
		Dataset: job.Dataset,
		Format:  job.Format,
		Table:   job.TargetTable,
	}
	if job.ParquetBatchSize == 0 {
		job.ParquetBatchSize = DefaultParquetBatchSize
	}

	if err := job.Validate(); err != nil {
		return result, err
	}
	def, _ := Get(job.Dataset)

	url, err := SourceURL(job, s.bases)
	if err != nil {
		return result, err
	}
	result.URL = url

	logger := logging.WithFields(ctx, "dataset", job.Dataset, "table", job.TargetTable)
	logger.Info("ingest started", "source", def.Info.Label, "url", url, "format", job.Format)
	s.report(IngestProgress{Dataset: job.Dataset, Table: job.TargetTable, Phase: PhaseStarting})

	switch {
	case job.Dataset == DatasetZoneLookup:
		err = s.ingestZones(ctx, def, job, url, result)
	case job.Format == FormatCSV:
		err = s.ingestCSV(ctx, def, job, url, result)
	default:
		err = s.ingestParquet(ctx, job, url, result)
	}
	result.Duration = time.Since(start)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("ingest cancelled", "inserted", result.Inserted)
		} else {
			logger.Error("ingest failed",
				"error", err,
				"code", NewUserError(err).User.Code,
				"inserted", result.Inserted,
			)
		}
		s.report(IngestProgress{
			Dataset:  job.Dataset,
			Table:    job.TargetTable,
			Phase:    PhaseFailed,
			Inserted: result.Inserted,
			Error:    err.Error(),
		})
		return result, err
	}

	logger.Info("ingest complete",
		"chunks", result.Chunks,
		"inserted", result.Inserted,
		"duration", result.Duration.Round(time.Millisecond),
	)
	s.report(IngestProgress{
		Dataset:  job.Dataset,
		Table:    job.TargetTable,
		Phase:    PhaseComplete,
		Chunk:    result.Chunks,
		Inserted: result.Inserted,
	})
	return result, nil
}

func (s *Service) report(p IngestProgress) {
	if s.progress != nil {
		s.progress(p)
	}
}
