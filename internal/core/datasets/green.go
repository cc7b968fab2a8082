package datasets

import "github.com/JonMunkholm/nyctaxi/internal/core"

func init() {
	registerGreen()
}

// Green records carry lpep_* timestamps and a few street-hail columns.
func registerGreen() {
	core.Register(core.DatasetDefinition{
		Info: core.DatasetInfo{
			Key:   core.DatasetGreen,
			Label: "Green taxi trips",
		},
		FieldSpecs: withFields(
			core.FieldSpec{Name: "lpep_pickup_datetime", Type: core.TypeTimestamp},
			core.FieldSpec{Name: "lpep_dropoff_datetime", Type: core.TypeTimestamp},
			core.FieldSpec{Name: "ehail_fee", Type: core.TypeDouble},
			core.FieldSpec{Name: "trip_type", Type: core.TypeBigInt},
		),
		NAValues: core.DefaultNAValues,
	})
}
