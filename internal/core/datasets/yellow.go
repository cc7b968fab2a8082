package datasets

import "github.com/JonMunkholm/nyctaxi/internal/core"

func init() {
	registerYellow()
}

func registerYellow() {
	core.Register(core.DatasetDefinition{
		Info: core.DatasetInfo{
			Key:   core.DatasetYellow,
			Label: "Yellow taxi trips",
		},
		FieldSpecs: withFields(
			core.FieldSpec{Name: "tpep_pickup_datetime", Type: core.TypeTimestamp},
			core.FieldSpec{Name: "tpep_dropoff_datetime", Type: core.TypeTimestamp},
			core.FieldSpec{Name: "airport_fee", Type: core.TypeDouble},
		),
		NAValues: core.DefaultNAValues,
	})
}
