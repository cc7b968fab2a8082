package core

import (
	"strconv"
	"strings"
)

// DeclaredType returns the declared type of column name, matched case-insensitively.
func (d DatasetDefinition) DeclaredType(name string) (ColumnType, bool) {
	name = strings.TrimSpace(name)
	for _, spec := range d.FieldSpecs {
		if spec.Name == name {
			return spec.Type, true
		}
	}
	for _, spec := range d.FieldSpecs {
		if strings.EqualFold(spec.Name, name) {
			return spec.Type, true
		}
	}
	return TypeText, false
}

// ResolveSchema types every header column. Declared columns keep their declared
// type; the rest are inferred from sample, which is normally the first chunk.
// Inferred integer columns are created as DOUBLE PRECISION so later chunks may
// carry fractional values. Column names are lowercased when the definition asks for it.
func ResolveSchema(def DatasetDefinition, header []string, sample [][]string) []Column {
	cols := make([]Column, len(header))
	for i, name := range header {
		typ, ok := def.DeclaredType(name)
		if !ok {
			typ = inferColumnType(sample, i)
			if typ == TypeBigInt {
				typ = TypeDouble
			}
		}
		if def.LowercaseColumns {
			name = strings.ToLower(name)
		}
		cols[i] = Column{Name: name, Type: typ}
	}
	return cols
}

// LowercaseColumns returns a copy of cols with every name in lower case.
func LowercaseColumns(cols []Column) []Column {
	out := make([]Column, len(cols))
	for i, c := range cols {
		out[i] = Column{Name: strings.ToLower(c.Name), Type: c.Type}
	}
	return out
}

// inferColumnType picks the narrowest type every non-empty value in column idx fits.
// A column with no values at all is text.
func inferColumnType(rows [][]string, idx int) ColumnType {
	isInt, isFloat, isBool := true, true, true
	seen := false

	for _, row := range rows {
		if idx >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[idx])
		if v == "" {
			continue
		}
		seen = true

		if isInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			switch v {
			case "True", "False", "true", "false", "TRUE", "FALSE":
			default:
				isBool = false
			}
		}
		if !isInt && !isFloat && !isBool {
			return TypeText
		}
	}

	switch {
	case !seen:
		return TypeText
	case isBool:
		return TypeBool
	case isInt:
		return TypeBigInt
	case isFloat:
		return TypeDouble
	default:
		return TypeText
	}
}
