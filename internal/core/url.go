package core

import (
	"fmt"
	"strings"
)

// SourceBases holds the roots the dataset URLs are built from.
type SourceBases struct {
	CSV        string
	Parquet    string
	ZoneLookup string
}

// SourceURL returns the location of the resource job reads.
//
//	zone_lookup: the fixed zone lookup URL
//	csv:         {csv}/{dataset}/{dataset}_tripdata_{YYYY}-{MM}.csv.gz
//	parquet:     {parquet}/{dataset}_tripdata_{YYYY}-{MM}.parquet
func SourceURL(job Job, bases SourceBases) (string, error) {
	if job.Dataset == DatasetZoneLookup {
		return bases.ZoneLookup, nil
	}
	if job.Dataset != DatasetYellow && job.Dataset != DatasetGreen {
		return "", fmt.Errorf("%w: %q", ErrUnknownDataset, job.Dataset)
	}

	name := fmt.Sprintf("%s_tripdata_%04d-%02d", job.Dataset, job.Year, job.Month)

	switch job.Format {
	case FormatCSV:
		return fmt.Sprintf("%s/%s/%s.csv.gz", strings.TrimSuffix(bases.CSV, "/"), job.Dataset, name), nil
	case FormatParquet:
		return fmt.Sprintf("%s/%s.parquet", strings.TrimSuffix(bases.Parquet, "/"), name), nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", ErrInvalidJob, job.Format)
	}
}
