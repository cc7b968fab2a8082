// Package core provides the business logic for taxi data ingestion.
// This package has no CLI dependencies and can be driven by any frontend.
package core

import (
	"context"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
)

// Dataset identifies one of the supported sources.
type Dataset string

const (
	DatasetYellow     Dataset = "yellow"
	DatasetGreen      Dataset = "green"
	DatasetZoneLookup Dataset = "zone_lookup"
)

// Format is the file format trip data is read in.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// ColumnType is the PostgreSQL type a column is declared with.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeBigInt
	TypeInteger
	TypeDouble
	TypeReal
	TypeBool
	TypeTimestamp
	TypeTimestampTZ
	TypeDate
)

// SQL returns the type name used in CREATE TABLE.
func (t ColumnType) SQL() string {
	switch t {
	case TypeBigInt:
		return "BIGINT"
	case TypeInteger:
		return "INTEGER"
	case TypeDouble:
		return "DOUBLE PRECISION"
	case TypeReal:
		return "REAL"
	case TypeBool:
		return "BOOLEAN"
	case TypeTimestamp:
		return "TIMESTAMP WITHOUT TIME ZONE"
	case TypeTimestampTZ:
		return "TIMESTAMP WITH TIME ZONE"
	case TypeDate:
		return "DATE"
	default:
		return "TEXT"
	}
}

func (t ColumnType) String() string {
	return t.SQL()
}

// Column is one column of a destination table.
type Column struct {
	Name string
	Type ColumnType
}

// ColumnNames returns the names of cols in order.
func ColumnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// FieldSpec declares the type of a known source column.
type FieldSpec struct {
	Name string     // Column header name as it appears in the source
	Type ColumnType // Type the column is coerced to
}

// DatasetInfo contains display information about a dataset.
type DatasetInfo struct {
	Key   Dataset
	Label string
}

// DatasetDefinition contains everything needed to type a dataset's columns.
// Columns present in the source but missing from FieldSpecs are inferred.
type DatasetDefinition struct {
	Info       DatasetInfo
	FieldSpecs []FieldSpec

	// LowercaseColumns renames every column to lower case before writing.
	LowercaseColumns bool

	// NAValues are CSV cells loaded as NULL.
	NAValues []string
}

// DefaultNAValues are the cells pandas' read_csv treats as missing by default.
var DefaultNAValues = []string{
	"#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// Job is a validated ingest request.
type Job struct {
	Dataset          Dataset
	Format           Format
	Year             int
	Month            int
	ChunkSize        int
	TargetTable      string
	ParquetBatchSize int
}

// Sink writes rows into the destination database.
type Sink interface {
	// ReplaceTable drops table if it exists and creates it with cols and no rows.
	ReplaceTable(ctx context.Context, table string, cols []Column) error

	// Append copies rows into table and returns the number of rows written.
	Append(ctx context.Context, table string, cols []Column, rows pgx.CopyFromSource) (int64, error)

	// InTx runs fn against a sink bound to a single transaction.
	// The transaction commits if fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(Sink) error) error
}

// RemoteFile is a downloaded file that supports random access.
// Close releases any local copy.
type RemoteFile interface {
	io.ReaderAt
	io.Seeker
	io.Closer
}

// Fetcher retrieves remote resources.
type Fetcher interface {
	// Open streams the resource at url, decompressed when the name says so.
	Open(ctx context.Context, url string) (io.ReadCloser, error)

	// Download copies the resource at url to local storage.
	Download(ctx context.Context, url string) (RemoteFile, error)
}

// IngestPhase indicates the current stage of an ingest run.
type IngestPhase string

const (
	PhaseStarting    IngestPhase = "starting"
	PhaseDownloading IngestPhase = "downloading"
	PhaseCreating    IngestPhase = "creating"
	PhaseInserting   IngestPhase = "inserting"
	PhaseComplete    IngestPhase = "complete"
	PhaseFailed      IngestPhase = "failed"
)

// IngestProgress represents the current state of an ingest run.
type IngestProgress struct {
	Dataset  Dataset
	Table    string
	Phase    IngestPhase
	Chunk    int   // 1-based number of the chunk just written
	Rows     int   // Rows in the chunk just written
	Inserted int64 // Running total of rows written
	Error    string
}

// ProgressCallback is called whenever an ingest run changes phase or writes a chunk.
type ProgressCallback func(IngestProgress)

// IngestResult contains the final result of an ingest run.
type IngestResult struct {
	RunID    string
	Dataset  Dataset
	Format   Format
	URL      string
	Table    string
	Columns  []Column
	Chunks   int
	Inserted int64
	Duration time.Duration
}
