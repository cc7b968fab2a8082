package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/nyctaxi/internal/logging"
)

// zoneReadSize is the row batch used while reading the zone lookup; the file
// is small and is held in memory whole before anything is written.
const zoneReadSize = 1024

// ingestZones loads the zone lookup CSV and replaces the table in one transaction.
func (s *Service) ingestZones(ctx context.Context, def DatasetDefinition, job Job, url string, result *IngestResult) error {
	logger := logging.WithFields(ctx, "dataset", job.Dataset, "table", job.TargetTable)

	s.report(IngestProgress{Dataset: job.Dataset, Table: job.TargetTable, Phase: PhaseDownloading})
	body, err := s.fetcher.Open(ctx, url)
	if err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	defer body.Close()

	chunks, err := NewChunkReader(body, zoneReadSize)
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	chunks.SetNAValues(def.NAValues)
	all, err := chunks.ReadAll()
	if err != nil {
		return err
	}

	cols := ResolveSchema(def, chunks.Header(), all.Rows)
	result.Columns = cols

	s.report(IngestProgress{Dataset: job.Dataset, Table: job.TargetTable, Phase: PhaseCreating})
	err = s.sink.InTx(ctx, func(tx Sink) error {
		if err := tx.ReplaceTable(ctx, job.TargetTable, cols); err != nil {
			return fmt.Errorf("create table %s: %w", job.TargetTable, err)
		}
		if len(all.Rows) == 0 {
			return nil
		}
		return s.appendChunk(ctx, tx, job, cols, all, result)
	})
	if err != nil {
		result.Chunks, result.Inserted = 0, 0 // rolled back
		return err
	}

	logger.Info("zone lookup loaded", "rows", len(all.Rows), "columns", len(cols))
	return nil
}
