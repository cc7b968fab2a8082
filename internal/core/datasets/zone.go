package datasets

import "github.com/JonMunkholm/nyctaxi/internal/core"

func init() {
	registerZoneLookup()
}

func registerZoneLookup() {
	core.Register(core.DatasetDefinition{
		Info: core.DatasetInfo{
			Key:   core.DatasetZoneLookup,
			Label: "Taxi zone lookup",
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "LocationID", Type: core.TypeBigInt},
			{Name: "Borough", Type: core.TypeText},
			{Name: "Zone", Type: core.TypeText},
			{Name: "service_zone", Type: core.TypeText},
		},
		LowercaseColumns: true,
		NAValues:         core.DefaultNAValues,
	})
}
