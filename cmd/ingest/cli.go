package main

import (
	"github.com/JonMunkholm/nyctaxi/internal/config"
)

// CLI is the ingest command line. Connection flags left empty fall back to
// the POSTGRES_* environment variables.
type CLI struct {
	PgUser string `help:"Postgres user (env POSTGRES_USER, default root)"`
	PgPass string `help:"Postgres password (env POSTGRES_PASSWORD, default root)"`
	PgHost string `help:"Postgres host (env POSTGRES_HOST, default localhost)"`
	PgPort int    `help:"Postgres port (env POSTGRES_PORT, default 5432)"`
	PgDB   string `help:"Postgres database (env POSTGRES_DB, default ny_taxi)"`

	Dataset     string `help:"Dataset to load: yellow, green or zone_lookup" enum:"yellow,green,zone_lookup" required:""`
	Format      string `help:"Source format for trip data; ignored for zone_lookup" enum:"csv,parquet" default:"parquet"`
	Year        int    `help:"Year of trip data"`
	Month       int    `help:"Month of trip data (1-12)"`
	Chunksize   int    `help:"CSV rows per insert batch" default:"100000"`
	TargetTable string `help:"Destination table; schema.table is split on the first dot into schema and table" required:""`
}

// Overrides maps parsed flags onto the configuration layer.
func (c *CLI) Overrides() config.Overrides {
	return config.Overrides{
		PgUser:      c.PgUser,
		PgPass:      c.PgPass,
		PgHost:      c.PgHost,
		PgPort:      c.PgPort,
		PgDB:        c.PgDB,
		Dataset:     c.Dataset,
		Format:      c.Format,
		Year:        c.Year,
		Month:       c.Month,
		ChunkSize:   c.Chunksize,
		TargetTable: c.TargetTable,
	}
}
