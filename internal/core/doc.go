// Package core provides the business logic for loading NYC taxi data.
//
// This package contains the domain logic independent of the command line and
// of any particular database driver or HTTP client. It can be driven by the
// CLI or by tests with an in-memory [Sink] and [Fetcher].
//
// # Architecture
//
//   - Dataset Definitions: registered via the registry, each declaring the
//     PostgreSQL type of its known columns.
//   - Service: the entry point. [Service.Run] resolves a [Job] to a URL and
//     runs one of three ingestion routines.
//   - Sink and Fetcher: interfaces for the destination table and the remote
//     source, implemented by the sink and source packages.
//
// # Dataset Registry
//
// Datasets are registered at init time using [Register]:
//
//	core.Register(core.DatasetDefinition{
//	    Info: core.DatasetInfo{Key: core.DatasetZoneLookup, Label: "Taxi Zone Lookup"},
//	    FieldSpecs: []core.FieldSpec{
//	        {Name: "LocationID", Type: core.TypeBigInt},
//	    },
//	    LowercaseColumns: true,
//	})
//
// Source columns missing from FieldSpecs are typed from the first chunk.
//
// # Ingestion
//
// CSV trip data is streamed in chunks of [Job.ChunkSize] rows:
//
//  1. The first chunk fixes the column types
//  2. The table is dropped and recreated with no rows
//  3. Each chunk is written with COPY as its own statement
//
// A failure after the first chunk leaves the chunks already written in place.
// Parquet trip data and the zone lookup are replaced in a single transaction.
//
// # Error Handling
//
// Technical errors are mapped to short coded hints using [MapError]:
//
//   - NET: source unreachable or returned an error status
//   - DB: connection, authentication and permission failures
//   - DATA: values that could not be converted or were rejected
//   - FILE: empty, malformed or wrongly compressed sources
//   - RUN: cancellation, timeouts and invalid jobs
package core
