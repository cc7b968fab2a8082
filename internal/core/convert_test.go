package core

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ----------------------------------------------------------------------------
// ToPgInt8 Tests
// ----------------------------------------------------------------------------

func TestToPgInt8(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue int64
		wantErr   bool
	}{
		{name: "positive integer", input: "123", wantValid: true, wantValue: 123},
		{name: "negative integer", input: "-4", wantValid: true, wantValue: -4},
		{name: "surrounding whitespace", input: "  7 ", wantValid: true, wantValue: 7},
		{name: "integral float", input: "1.0", wantValid: true, wantValue: 1},
		{name: "empty is null", input: "", wantValid: false},
		{name: "whitespace is null", input: "   ", wantValid: false},
		{name: "fractional float", input: "1.5", wantErr: true},
		{name: "text", input: "abc", wantErr: true},
		{name: "overflow", input: "1e30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToPgInt8(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ToPgInt8(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToPgInt8(%q) unexpected error: %v", tt.input, err)
			}
			if got.Valid != tt.wantValid {
				t.Errorf("ToPgInt8(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if tt.wantValid && got.Int64 != tt.wantValue {
				t.Errorf("ToPgInt8(%q) = %d, want %d", tt.input, got.Int64, tt.wantValue)
			}
		})
	}
}

func TestToPgInt4_Range(t *testing.T) {
	if _, err := ToPgInt4("2147483647"); err != nil {
		t.Errorf("max int32 should parse: %v", err)
	}
	if _, err := ToPgInt4("2147483648"); err == nil {
		t.Error("int32 overflow should fail")
	}
	if _, err := ToPgInt4("3e9"); err == nil {
		t.Error("int32 overflow written as float should fail")
	}
}

// ----------------------------------------------------------------------------
// ToPgFloat8 Tests
// ----------------------------------------------------------------------------

func TestToPgFloat8(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue float64
		wantErr   bool
	}{
		{name: "decimal", input: "12.5", wantValid: true, wantValue: 12.5},
		{name: "negative", input: "-0.5", wantValid: true, wantValue: -0.5},
		{name: "integer", input: "3", wantValid: true, wantValue: 3},
		{name: "exponent", input: "1e3", wantValid: true, wantValue: 1000},
		{name: "empty is null", input: "", wantValid: false},
		{name: "currency symbol", input: "$5.00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToPgFloat8(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ToPgFloat8(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToPgFloat8(%q) unexpected error: %v", tt.input, err)
			}
			if got.Valid != tt.wantValid {
				t.Errorf("ToPgFloat8(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if tt.wantValid && got.Float64 != tt.wantValue {
				t.Errorf("ToPgFloat8(%q) = %v, want %v", tt.input, got.Float64, tt.wantValue)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToPgBool Tests
// ----------------------------------------------------------------------------

func TestToPgBool(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		wantValue bool
		wantErr   bool
	}{
		{input: "true", wantValid: true, wantValue: true},
		{input: "True", wantValid: true, wantValue: true},
		{input: "Y", wantValid: true, wantValue: true},
		{input: "1", wantValid: true, wantValue: true},
		{input: "false", wantValid: true, wantValue: false},
		{input: "N", wantValid: true, wantValue: false},
		{input: "0", wantValid: true, wantValue: false},
		{input: "", wantValid: false},
		{input: "maybe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ToPgBool(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ToPgBool(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToPgBool(%q) unexpected error: %v", tt.input, err)
			}
			if got.Valid != tt.wantValid || got.Bool != tt.wantValue {
				t.Errorf("ToPgBool(%q) = %+v, want valid=%v value=%v", tt.input, got, tt.wantValid, tt.wantValue)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToPgTimestamp Tests
// ----------------------------------------------------------------------------

func TestToPgTimestamp(t *testing.T) {
	want := time.Date(2021, 1, 1, 0, 30, 10, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "TLC layout", input: "2021-01-01 00:30:10", want: want},
		{name: "ISO T separator", input: "2021-01-01T00:30:10", want: want},
		{name: "fractional seconds", input: "2021-01-01 00:30:10.000", want: want},
		{name: "US layout", input: "01/01/2021 12:30:10 AM", want: want},
		{name: "date only", input: "2021-01-01", want: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "garbage", input: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToPgTimestamp(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ToPgTimestamp(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToPgTimestamp(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Valid || !got.Time.Equal(tt.want) {
				t.Errorf("ToPgTimestamp(%q) = %v, want %v", tt.input, got.Time, tt.want)
			}
		})
	}

	if got, err := ToPgTimestamp(""); err != nil || got.Valid {
		t.Errorf("ToPgTimestamp(\"\") = %+v, %v; want null", got, err)
	}
}

func TestToPgTimestamptz(t *testing.T) {
	got, err := ToPgTimestamptz("2021-01-01T05:00:00+05:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC); !got.Time.Equal(want) {
		t.Errorf("got %v, want %v", got.Time, want)
	}
}

func TestToPgDate(t *testing.T) {
	for _, input := range []string{"2024-03-15", "03/15/2024", "2024/03/15"} {
		got, err := ToPgDate(input)
		if err != nil {
			t.Fatalf("ToPgDate(%q) unexpected error: %v", input, err)
		}
		if got.Time.Year() != 2024 || got.Time.Month() != 3 || got.Time.Day() != 15 {
			t.Errorf("ToPgDate(%q) = %v", input, got.Time)
		}
	}
	if _, err := ToPgDate("15.03.2024"); err == nil {
		t.Error("unsupported layout should fail")
	}
}

// ----------------------------------------------------------------------------
// ToPgText Tests
// ----------------------------------------------------------------------------

func TestToPgText(t *testing.T) {
	if got := ToPgText(""); got.Valid {
		t.Error("empty string should be null")
	}
	if got := ToPgText(" N "); !got.Valid || got.String != " N " {
		t.Errorf("ToPgText(\" N \") = %+v, want whitespace preserved", got)
	}
}

// ----------------------------------------------------------------------------
// Convert Tests
// ----------------------------------------------------------------------------

func TestConvert_DispatchesByType(t *testing.T) {
	tests := []struct {
		typ  ColumnType
		raw  string
		want any
	}{
		{TypeBigInt, "5", pgtype.Int8{Int64: 5, Valid: true}},
		{TypeInteger, "5", pgtype.Int4{Int32: 5, Valid: true}},
		{TypeDouble, "2.5", pgtype.Float8{Float64: 2.5, Valid: true}},
		{TypeReal, "2.5", pgtype.Float4{Float32: 2.5, Valid: true}},
		{TypeBool, "true", pgtype.Bool{Bool: true, Valid: true}},
		{TypeText, "N", pgtype.Text{String: "N", Valid: true}},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			got, err := Convert(tt.raw, tt.typ)
			if err != nil {
				t.Fatalf("Convert(%q, %v) unexpected error: %v", tt.raw, tt.typ, err)
			}
			if got != tt.want {
				t.Errorf("Convert(%q, %v) = %#v, want %#v", tt.raw, tt.typ, got, tt.want)
			}
		})
	}
}

func TestConvert_Timestamp(t *testing.T) {
	got, err := Convert("2021-01-01 00:30:10", TypeTimestamp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ts, ok := got.(pgtype.Timestamp)
	if !ok || !ts.Valid {
		t.Fatalf("Convert returned %#v, want valid pgtype.Timestamp", got)
	}
}
