package core

import (
	"context"
	"fmt"
	"math"

	"github.com/JonMunkholm/nyctaxi/internal/logging"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/jackc/pgx/v5/pgtype"
)

// ingestParquet downloads a Parquet file, reads it whole, and replaces the
// table with its rows in a single transaction.
func (s *Service) ingestParquet(ctx context.Context, job Job, url string, result *IngestResult) error {
	logger := logging.WithFields(ctx, "dataset", job.Dataset, "table", job.TargetTable)

	s.report(IngestProgress{Dataset: job.Dataset, Table: job.TargetTable, Phase: PhaseDownloading})
	f, err := s.fetcher.Download(ctx, url)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer f.Close()

	tbl, err := ReadParquetTable(ctx, f)
	if err != nil {
		return err
	}
	defer tbl.Release()

	cols := LowercaseColumns(ArrowColumns(tbl.Schema()))
	result.Columns = cols
	logger.Info("parquet file read", "rows", tbl.NumRows(), "columns", len(cols))

	s.report(IngestProgress{Dataset: job.Dataset, Table: job.TargetTable, Phase: PhaseCreating})
	err = s.sink.InTx(ctx, func(tx Sink) error {
		if err := tx.ReplaceTable(ctx, job.TargetTable, cols); err != nil {
			return fmt.Errorf("create table %s: %w", job.TargetTable, err)
		}
		logger.Info("table created", "columns", len(cols))

		reader := array.NewTableReader(tbl, int64(job.ParquetBatchSize))
		defer reader.Release()

		batch := 0
		for reader.Next() {
			batch++
			rec := reader.Record()

			n, err := tx.Append(ctx, job.TargetTable, cols, newRecordSource(rec, cols))
			if err != nil {
				return fmt.Errorf("copy batch %d: %w", batch, err)
			}

			result.Chunks++
			result.Inserted += n
			s.report(IngestProgress{
				Dataset:  job.Dataset,
				Table:    job.TargetTable,
				Phase:    PhaseInserting,
				Chunk:    batch,
				Rows:     int(n),
				Inserted: result.Inserted,
			})
		}
		return reader.Err()
	})
	if err != nil {
		result.Chunks, result.Inserted = 0, 0 // rolled back
		return err
	}
	return nil
}

// ReadParquetTable reads every row group of the Parquet data in r into memory.
// The caller must Release the table.
func ReadParquetTable(ctx context.Context, r RemoteFile) (arrow.Table, error) {
	pf, err := file.NewParquetReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", ErrInvalidParquet, err)
	}
	defer pf.Close()

	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParquet, err)
	}

	tbl, err := reader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read table: %w", ErrInvalidParquet, err)
	}
	return tbl, nil
}

// ArrowColumns maps an Arrow schema onto destination columns.
// Types with no direct PostgreSQL counterpart are stored as text.
func ArrowColumns(schema *arrow.Schema) []Column {
	fields := schema.Fields()
	cols := make([]Column, len(fields))
	for i, f := range fields {
		cols[i] = Column{Name: f.Name, Type: arrowColumnType(f.Type)}
	}
	return cols
}

func arrowColumnType(dt arrow.DataType) ColumnType {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.UINT8, arrow.UINT16:
		return TypeInteger
	case arrow.INT64, arrow.UINT32, arrow.UINT64:
		return TypeBigInt
	case arrow.FLOAT16, arrow.FLOAT32:
		return TypeReal
	case arrow.FLOAT64:
		return TypeDouble
	case arrow.BOOL:
		return TypeBool
	case arrow.DATE32, arrow.DATE64:
		return TypeDate
	case arrow.TIMESTAMP:
		if ts, ok := dt.(*arrow.TimestampType); ok && ts.TimeZone != "" {
			return TypeTimestampTZ
		}
		return TypeTimestamp
	default:
		return TypeText
	}
}

// recordSource adapts an Arrow record to pgx.CopyFromSource.
type recordSource struct {
	rec  arrow.Record
	cols []Column
	row  int
	n    int
	err  error
}

func newRecordSource(rec arrow.Record, cols []Column) *recordSource {
	return &recordSource{rec: rec, cols: cols, row: -1, n: int(rec.NumRows())}
}

func (r *recordSource) Next() bool {
	if r.err != nil {
		return false
	}
	r.row++
	return r.row < r.n
}

func (r *recordSource) Values() ([]any, error) {
	values := make([]any, len(r.cols))
	for j := range r.cols {
		v, err := arrowValue(r.rec.Column(j), r.row)
		if err != nil {
			r.err = fmt.Errorf("column %q row %d: %w", r.cols[j].Name, r.row, err)
			return nil, r.err
		}
		values[j] = v
	}
	return values, nil
}

func (r *recordSource) Err() error {
	return r.err
}

// arrowValue returns the value at row i in a form pgx can encode. Nulls are nil.
func arrowValue(arr arrow.Array, i int) (any, error) {
	if arr.IsNull(i) {
		return nil, nil
	}

	switch a := arr.(type) {
	case *array.Int8:
		return int32(a.Value(i)), nil
	case *array.Int16:
		return int32(a.Value(i)), nil
	case *array.Int32:
		return a.Value(i), nil
	case *array.Int64:
		return a.Value(i), nil
	case *array.Uint8:
		return int32(a.Value(i)), nil
	case *array.Uint16:
		return int32(a.Value(i)), nil
	case *array.Uint32:
		return int64(a.Value(i)), nil
	case *array.Uint64:
		v := a.Value(i)
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("value %d out of range for bigint", v)
		}
		return int64(v), nil
	case *array.Float16:
		return a.Value(i).Float32(), nil
	case *array.Float32:
		return a.Value(i), nil
	case *array.Float64:
		return a.Value(i), nil
	case *array.Boolean:
		return a.Value(i), nil
	case *array.String:
		return a.Value(i), nil
	case *array.LargeString:
		return a.Value(i), nil
	case *array.Date32:
		return pgtype.Date{Time: a.Value(i).ToTime(), Valid: true}, nil
	case *array.Date64:
		return pgtype.Date{Time: a.Value(i).ToTime(), Valid: true}, nil
	case *array.Timestamp:
		ts := a.DataType().(*arrow.TimestampType)
		t := a.Value(i).ToTime(ts.Unit)
		if ts.TimeZone != "" {
			return pgtype.Timestamptz{Time: t, Valid: true}, nil
		}
		return pgtype.Timestamp{Time: t, Valid: true}, nil
	default:
		return arr.ValueStr(i), nil
	}
}
