package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values but does not validate: the ingest
// selection is only complete once command-line overrides have been applied.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Overrides carries values given explicitly on the command line.
// Zero values mean "not given" and leave the environment/default value alone.
type Overrides struct {
	PgUser string
	PgPass string
	PgHost string
	PgPort int
	PgDB   string

	Dataset     string
	Format      string
	Year        int
	Month       int
	ChunkSize   int
	TargetTable string
}

// Apply merges command-line overrides into the configuration.
// Flags win over environment variables, which win over literal defaults.
func (c *Config) Apply(o Overrides) {
	if o.PgUser != "" {
		c.Database.User = o.PgUser
	}
	if o.PgPass != "" {
		c.Database.Password = o.PgPass
	}
	if o.PgHost != "" {
		c.Database.Host = o.PgHost
	}
	if o.PgPort != 0 {
		c.Database.Port = o.PgPort
	}
	if o.PgDB != "" {
		c.Database.Name = o.PgDB
	}

	c.Ingest.Dataset = strings.ToLower(o.Dataset)
	c.Ingest.Format = strings.ToLower(o.Format)
	c.Ingest.Year = o.Year
	c.Ingest.Month = o.Month
	c.Ingest.TargetTable = o.TargetTable

	c.Ingest.ChunkSize = o.ChunkSize
	if c.Ingest.ChunkSize == 0 {
		c.Ingest.ChunkSize = DefaultChunkSize
	}

	// Trip data without an explicit format is read as Parquet.
	if c.Ingest.IsTripData() && c.Ingest.Format == "" {
		c.Ingest.Format = FormatParquet
	}
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, "POSTGRES_HOST must not be empty")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("POSTGRES_PORT (%d) must be 1-65535", c.Database.Port))
	}
	if c.Database.Name == "" {
		errs = append(errs, "POSTGRES_DB must not be empty")
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.Database.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}
	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.Database.MaxConns, c.Database.MinConns))
	}

	// Source validation
	if c.Source.HTTPTimeout < 0 {
		errs = append(errs, "HTTP_TIMEOUT must be non-negative")
	}
	if c.Source.CSVBaseURL == "" || c.Source.ParquetBaseURL == "" || c.Source.ZoneLookupURL == "" {
		errs = append(errs, "source URLs must not be empty")
	}

	// Ingest validation
	switch c.Ingest.Dataset {
	case DatasetYellow, DatasetGreen:
		switch c.Ingest.Format {
		case FormatCSV, FormatParquet:
		default:
			errs = append(errs, fmt.Sprintf("--format (%q) must be one of: csv, parquet", c.Ingest.Format))
		}
		if c.Ingest.Year < 1 || c.Ingest.Year > 9999 {
			errs = append(errs, fmt.Sprintf("--year (%d) is required for %s trip data", c.Ingest.Year, c.Ingest.Dataset))
		}
		if c.Ingest.Month < 1 || c.Ingest.Month > 12 {
			errs = append(errs, fmt.Sprintf("--month (%d) must be 1-12 for %s trip data", c.Ingest.Month, c.Ingest.Dataset))
		}
	case DatasetZoneLookup:
	default:
		errs = append(errs, fmt.Sprintf("--dataset (%q) must be one of: yellow, green, zone_lookup", c.Ingest.Dataset))
	}
	if c.Ingest.ChunkSize <= 0 {
		errs = append(errs, "--chunksize must be positive")
	}
	if strings.TrimSpace(c.Ingest.TargetTable) == "" {
		errs = append(errs, "--target-table is required")
	}
	if c.Ingest.ParquetBatchSize <= 0 {
		errs = append(errs, "PARQUET_BATCH_SIZE must be positive")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true, "human": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json, human", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// The database password is masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Database: {User: %q, Password: [MASKED], Host: %q, Port: %d, Name: %q, MaxConns: %d}, ",
		c.Database.User, c.Database.Host, c.Database.Port, c.Database.Name, c.Database.MaxConns))
	b.WriteString(fmt.Sprintf("Ingest: {Dataset: %q, Format: %q, Year: %d, Month: %d, ChunkSize: %d, TargetTable: %q}, ",
		c.Ingest.Dataset, c.Ingest.Format, c.Ingest.Year, c.Ingest.Month, c.Ingest.ChunkSize, c.Ingest.TargetTable))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
