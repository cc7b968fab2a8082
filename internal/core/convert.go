package core

// convert.go provides type conversion functions for CSV cells to PostgreSQL types.
//
// Source cells are coerced strictly: an empty cell becomes NULL, anything else
// must parse as the column's declared type or the run is aborted. All ToPg*
// functions return pgtype values with Valid=false for empty input.

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Timestamp layouts seen in TLC trip files, most common first.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"01/02/2006 03:04:05 PM",
	"01/02/2006 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var timestampTZLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05-07",
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
}

// Convert coerces a raw cell into a value for a column of type typ.
func Convert(raw string, typ ColumnType) (any, error) {
	switch typ {
	case TypeBigInt:
		return ToPgInt8(raw)
	case TypeInteger:
		return ToPgInt4(raw)
	case TypeDouble:
		return ToPgFloat8(raw)
	case TypeReal:
		return ToPgFloat4(raw)
	case TypeBool:
		return ToPgBool(raw)
	case TypeTimestamp:
		return ToPgTimestamp(raw)
	case TypeTimestampTZ:
		return ToPgTimestamptz(raw)
	case TypeDate:
		return ToPgDate(raw)
	default:
		return ToPgText(raw), nil
	}
}

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty. Whitespace is preserved.
func ToPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// parseInt accepts plain integers and integral floats such as "1.0".
func parseInt(s string, bitSize int) (int64, error) {
	i, err := strconv.ParseInt(s, 10, bitSize)
	if err == nil {
		return i, nil
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	limit := math.Ldexp(1, bitSize-1)
	if f >= limit || f < -limit {
		return 0, fmt.Errorf("integer %q out of range", s)
	}
	return int64(f), nil
}

// ToPgInt8 converts a string to pgtype.Int8.
func ToPgInt8(s string) (pgtype.Int8, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Int8{Valid: false}, nil
	}
	i, err := parseInt(s, 64)
	if err != nil {
		return pgtype.Int8{}, err
	}
	return pgtype.Int8{Int64: i, Valid: true}, nil
}

// ToPgInt4 converts a string to pgtype.Int4.
func ToPgInt4(s string) (pgtype.Int4, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Int4{Valid: false}, nil
	}
	i, err := parseInt(s, 32)
	if err != nil {
		return pgtype.Int4{}, err
	}
	return pgtype.Int4{Int32: int32(i), Valid: true}, nil
}

// ToPgFloat8 converts a string to pgtype.Float8.
func ToPgFloat8(s string) (pgtype.Float8, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Float8{Valid: false}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return pgtype.Float8{}, fmt.Errorf("invalid number %q", s)
	}
	return pgtype.Float8{Float64: f, Valid: true}, nil
}

// ToPgFloat4 converts a string to pgtype.Float4.
func ToPgFloat4(s string) (pgtype.Float4, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Float4{Valid: false}, nil
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return pgtype.Float4{}, fmt.Errorf("invalid number %q", s)
	}
	return pgtype.Float4{Float32: float32(f), Valid: true}, nil
}

// ToPgBool converts a string to pgtype.Bool.
// Accepts true/false, t/f, yes/no, y/n and 1/0 in any case.
func ToPgBool(s string) (pgtype.Bool, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return pgtype.Bool{Valid: false}, nil
	}

	switch s {
	case "true", "t", "yes", "y", "1":
		return pgtype.Bool{Bool: true, Valid: true}, nil
	case "false", "f", "no", "n", "0":
		return pgtype.Bool{Bool: false, Valid: true}, nil
	default:
		return pgtype.Bool{}, fmt.Errorf("invalid boolean %q", s)
	}
}

// ToPgTimestamp converts a string to pgtype.Timestamp (no time zone).
func ToPgTimestamp(s string) (pgtype.Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Timestamp{Valid: false}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Timestamp{Time: t, Valid: true}, nil
		}
	}
	return pgtype.Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

// ToPgTimestamptz converts a string with a UTC offset to pgtype.Timestamptz.
func ToPgTimestamptz(s string) (pgtype.Timestamptz, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Timestamptz{Valid: false}, nil
	}
	for _, layout := range timestampTZLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Timestamptz{Time: t, Valid: true}, nil
		}
	}
	return pgtype.Timestamptz{}, fmt.Errorf("invalid timestamp %q", s)
}

// ToPgDate converts a string to pgtype.Date.
func ToPgDate(s string) (pgtype.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Date{Valid: false}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Date{Time: t, Valid: true}, nil
		}
	}
	return pgtype.Date{}, fmt.Errorf("invalid date %q", s)
}
