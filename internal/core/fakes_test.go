package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
)

// ============================================================================
// In-memory Sink
// ============================================================================

type memTable struct {
	cols []Column
	rows [][]any
}

// memSink stores tables in memory. InTx snapshots the tables and restores them
// when fn fails, which is enough to observe rollback behavior.
type memSink struct {
	mu      sync.Mutex
	tables  map[string]*memTable
	appends int
	txs     int

	// failOnAppend makes the Nth Append call (1-based) fail; 0 never fails.
	failOnAppend int
}

func newMemSink() *memSink {
	return &memSink{tables: make(map[string]*memTable)}
}

func (m *memSink) ReplaceTable(ctx context.Context, table string, cols []Column) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = &memTable{cols: append([]Column(nil), cols...)}
	return nil
}

func (m *memSink) Append(ctx context.Context, table string, cols []Column, rows pgx.CopyFromSource) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.appends++
	if m.failOnAppend == m.appends {
		return 0, errors.New("copy failed: connection reset by peer")
	}

	t, ok := m.tables[table]
	if !ok {
		return 0, fmt.Errorf("relation %q does not exist", table)
	}

	var n int64
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return 0, err
		}
		if len(values) != len(t.cols) {
			return 0, fmt.Errorf("got %d values for %d columns", len(values), len(t.cols))
		}
		t.rows = append(t.rows, values)
		n++
	}
	return n, rows.Err()
}

func (m *memSink) InTx(ctx context.Context, fn func(Sink) error) error {
	m.mu.Lock()
	m.txs++
	snapshot := make(map[string]*memTable, len(m.tables))
	for k, v := range m.tables {
		snapshot[k] = &memTable{cols: v.cols, rows: append([][]any(nil), v.rows...)}
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.tables = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memSink) table(name string) (*memTable, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[name]
	return t, ok
}

// ============================================================================
// In-memory Fetcher
// ============================================================================

type memFetcher struct {
	files  map[string][]byte
	opened []string
}

func newMemFetcher() *memFetcher {
	return &memFetcher{files: make(map[string][]byte)}
}

func (f *memFetcher) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	f.opened = append(f.opened, url)
	data, ok := f.files[url]
	if !ok {
		return nil, fmt.Errorf("GET %s: unexpected status 404 Not Found", url)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *memFetcher) Download(ctx context.Context, url string) (RemoteFile, error) {
	f.opened = append(f.opened, url)
	data, ok := f.files[url]
	if !ok {
		return nil, fmt.Errorf("GET %s: unexpected status 404 Not Found", url)
	}
	return memFile{bytes.NewReader(data)}, nil
}

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

// ============================================================================
// Registry fixtures
// ============================================================================

// registerTestDatasets replaces the registry with small definitions shaped
// like the real ones.
func registerTestDatasets(t *testing.T) {
	t.Helper()
	Clear()
	t.Cleanup(Clear)

	trip := []FieldSpec{
		{Name: "VendorID", Type: TypeBigInt},
		{Name: "fare_amount", Type: TypeDouble},
		{Name: "store_and_fwd_flag", Type: TypeText},
	}
	Register(DatasetDefinition{
		Info: DatasetInfo{Key: DatasetYellow, Label: "Yellow"},
		FieldSpecs: append([]FieldSpec{
			{Name: "tpep_pickup_datetime", Type: TypeTimestamp},
		}, trip...),
		NAValues: DefaultNAValues,
	})
	Register(DatasetDefinition{
		Info: DatasetInfo{Key: DatasetGreen, Label: "Green"},
		FieldSpecs: append([]FieldSpec{
			{Name: "lpep_pickup_datetime", Type: TypeTimestamp},
		}, trip...),
		NAValues: DefaultNAValues,
	})
	Register(DatasetDefinition{
		Info:             DatasetInfo{Key: DatasetZoneLookup, Label: "Zones"},
		FieldSpecs:       []FieldSpec{{Name: "LocationID", Type: TypeBigInt}},
		LowercaseColumns: true,
		NAValues:         DefaultNAValues,
	})
}
