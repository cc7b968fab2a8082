package core

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/JonMunkholm/nyctaxi/internal/logging"
	"github.com/jackc/pgx/v5"
)

// ingestCSV streams a gzipped CSV in chunks. The first chunk fixes the schema
// and replaces the table; every chunk is then copied as its own statement, so
// a failure part way leaves the chunks already written in place.
func (s *Service) ingestCSV(ctx context.Context, def DatasetDefinition, job Job, url string, result *IngestResult) error {
	logger := logging.WithFields(ctx, "dataset", job.Dataset, "table", job.TargetTable)

	s.report(IngestProgress{Dataset: job.Dataset, Table: job.TargetTable, Phase: PhaseDownloading})
	body, err := s.fetcher.Open(ctx, url)
	if err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	defer body.Close()

	chunks, err := NewChunkReader(body, job.ChunkSize)
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	chunks.SetNAValues(def.NAValues)

	first, err := chunks.Next()
	if errors.Is(err, io.EOF) {
		first = &Chunk{Index: 1, Start: 1}
	} else if err != nil {
		return err
	}

	cols := ResolveSchema(def, chunks.Header(), first.Rows)
	result.Columns = cols

	s.report(IngestProgress{Dataset: job.Dataset, Table: job.TargetTable, Phase: PhaseCreating})
	if err := s.sink.ReplaceTable(ctx, job.TargetTable, cols); err != nil {
		return fmt.Errorf("create table %s: %w", job.TargetTable, err)
	}
	logger.Info("table created", "columns", len(cols))

	if len(first.Rows) == 0 {
		logger.Warn("source has no data rows")
		return nil
	}

	if err := s.appendChunk(ctx, s.sink, job, cols, first, result); err != nil {
		return err
	}
	logger.Info("inserted first chunk", "rows", len(first.Rows))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk, err := chunks.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := s.appendChunk(ctx, s.sink, job, cols, chunk, result); err != nil {
			return err
		}
		logger.Debug("inserted chunk", "chunk", chunk.Index, "rows", len(chunk.Rows), "total", result.Inserted)
	}
}

// appendChunk converts and copies one chunk, then reports progress.
func (s *Service) appendChunk(ctx context.Context, sink Sink, job Job, cols []Column, chunk *Chunk, result *IngestResult) error {
	rows, err := ConvertRows(chunk, cols)
	if err != nil {
		return fmt.Errorf("chunk %d: %w", chunk.Index, err)
	}

	n, err := sink.Append(ctx, job.TargetTable, cols, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy chunk %d: %w", chunk.Index, err)
	}

	result.Chunks++
	result.Inserted += n

	s.report(IngestProgress{
		Dataset:  job.Dataset,
		Table:    job.TargetTable,
		Phase:    PhaseInserting,
		Chunk:    chunk.Index,
		Rows:     int(n),
		Inserted: result.Inserted,
	})
	return nil
}
