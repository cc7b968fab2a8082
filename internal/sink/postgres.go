// Package sink writes ingested rows into PostgreSQL.
package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/nyctaxi/internal/core"
	"github.com/JonMunkholm/nyctaxi/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool, pgx.Conn and pgx.Tx the sink uses.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres is a core.Sink backed by a pool, connection or transaction.
type Postgres struct {
	db DBTX
}

var _ core.Sink = (*Postgres)(nil)

// New returns a sink that executes against db.
func New(db DBTX) *Postgres {
	return &Postgres{db: db}
}

// ReplaceTable drops table if it exists and creates it empty with cols.
func (p *Postgres) ReplaceTable(ctx context.Context, table string, cols []core.Column) error {
	if len(cols) == 0 {
		return fmt.Errorf("table %s: no columns", table)
	}
	ident := ParseIdentifier(table)

	if _, err := p.db.Exec(ctx, DropTableSQL(ident)); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	if _, err := p.db.Exec(ctx, CreateTableSQL(ident, cols)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	logging.FromContext(ctx).Debug("table replaced", "table", ident.Sanitize(), "columns", len(cols))
	return nil
}

// Append copies rows into table with COPY FROM STDIN.
func (p *Postgres) Append(ctx context.Context, table string, cols []core.Column, rows pgx.CopyFromSource) (int64, error) {
	return p.db.CopyFrom(ctx, ParseIdentifier(table), core.ColumnNames(cols), rows)
}

// InTx runs fn in a transaction; it commits when fn returns nil.
func (p *Postgres) InTx(ctx context.Context, fn func(core.Sink) error) error {
	return pgx.BeginFunc(ctx, p.db, func(tx pgx.Tx) error {
		return fn(&Postgres{db: tx})
	})
}

// ParseIdentifier splits a possibly schema-qualified table name on its first dot.
func ParseIdentifier(table string) pgx.Identifier {
	if schema, name, ok := strings.Cut(table, "."); ok && schema != "" && name != "" {
		return pgx.Identifier{schema, name}
	}
	return pgx.Identifier{table}
}

// DropTableSQL returns the statement that removes ident if present.
func DropTableSQL(ident pgx.Identifier) string {
	return "DROP TABLE IF EXISTS " + ident.Sanitize()
}

// CreateTableSQL returns the CREATE TABLE statement for ident with cols in order.
func CreateTableSQL(ident pgx.Identifier, cols []core.Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = quoteIdentifier(c.Name) + " " + c.Type.SQL()
	}
	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", ident.Sanitize(), strings.Join(defs, ",\n\t"))
}

// quoteIdentifier quotes a column name, doubling embedded quotes.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
