package datasets

import "github.com/JonMunkholm/nyctaxi/internal/core"

// tripFields are the columns yellow and green trip records share.
var tripFields = []core.FieldSpec{
	{Name: "VendorID", Type: core.TypeBigInt},
	{Name: "passenger_count", Type: core.TypeBigInt},
	{Name: "trip_distance", Type: core.TypeDouble},
	{Name: "RatecodeID", Type: core.TypeBigInt},
	{Name: "store_and_fwd_flag", Type: core.TypeText},
	{Name: "PULocationID", Type: core.TypeBigInt},
	{Name: "DOLocationID", Type: core.TypeBigInt},
	{Name: "payment_type", Type: core.TypeBigInt},
	{Name: "fare_amount", Type: core.TypeDouble},
	{Name: "extra", Type: core.TypeDouble},
	{Name: "mta_tax", Type: core.TypeDouble},
	{Name: "tip_amount", Type: core.TypeDouble},
	{Name: "tolls_amount", Type: core.TypeDouble},
	{Name: "improvement_surcharge", Type: core.TypeDouble},
	{Name: "total_amount", Type: core.TypeDouble},
	{Name: "congestion_surcharge", Type: core.TypeDouble},
}

func withFields(extra ...core.FieldSpec) []core.FieldSpec {
	specs := make([]core.FieldSpec, 0, len(extra)+len(tripFields))
	specs = append(specs, extra...)
	return append(specs, tripFields...)
}
