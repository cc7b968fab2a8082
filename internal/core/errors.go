package core

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySource is returned when a source has no header row.
	ErrEmptySource = errors.New("empty file: source has no header row")

	// ErrUnknownDataset is returned for a dataset with no registered definition.
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrInvalidJob is returned when a job is missing a field its dataset needs.
	ErrInvalidJob = errors.New("invalid job")

	// ErrInvalidParquet wraps failures to decode a Parquet source.
	ErrInvalidParquet = errors.New("invalid parquet")
)

// CellError reports a source value that could not be coerced to its column type.
type CellError struct {
	Row    int64 // 1-based data row, header excluded
	Column string
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("row %d, column %q: value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}
