package device

import "github.com/argus-security/argus-core/internal/connector"

// typeTable maps connector category, then raw vendor type, to standardized
// type info. Lookup order: exact (category, rawType) entry, then the
// category's default, then unmappedFallback.
var typeTable = map[connector.Category]map[string]TypeInfo{
	connector.CategoryYoLink: {
		"DoorSensor":      {Type: TypeSensor, Subtype: SubtypeContact},
		"MotionSensor":    {Type: TypeSensor, Subtype: SubtypeMotion},
		"LeakSensor":      {Type: TypeSensor, Subtype: SubtypeLeak},
		"VibrationSensor": {Type: TypeSensor, Subtype: SubtypeVibration},
		"THSensor":        {Type: TypeSensor, Subtype: SubtypeTemperature},
		"Switch":          {Type: TypeSwitch},
		"Outlet":          {Type: TypeOutlet},
		"MultiOutlet":     {Type: TypeMultiOutlet},
		"Hub":             {Type: TypeHub},
		"SpeakerHub":      {Type: TypeHub},
	},
	connector.CategoryPiko: {
		"Camera": {Type: TypeCamera},
		"Server": {Type: TypeServer},
	},
	connector.CategoryGenea: {
		"door": {Type: TypeDoor},
	},
}

// categoryDefaults supplies a fallback when a category is known but the
// raw type is not in its table. Piko inventories are overwhelmingly
// cameras and Genea only exposes doors, so unknown raw types from those
// vendors still classify usefully.
var categoryDefaults = map[connector.Category]TypeInfo{
	connector.CategoryPiko:  {Type: TypeCamera},
	connector.CategoryGenea: {Type: TypeDoor},
}

// unmappedFallback is the global fallback for unknown (category, rawType)
// pairs. The sync pipeline always produces a row; unmapped devices are
// logged as warnings, never rejected.
var unmappedFallback = TypeInfo{Type: TypeUnmapped, Subtype: SubtypeUnknown}

// MapDeviceType resolves a connector category and raw vendor type string
// to standardized type info.
//
// Pure and total: the same input always yields the same output, and every
// input yields a result. Unknown pairs resolve to the Unmapped/Unknown
// fallback rather than erroring.
func MapDeviceType(category connector.Category, rawType string) TypeInfo {
	if table, ok := typeTable[category]; ok {
		if info, ok := table[rawType]; ok {
			return info
		}
	}
	if info, ok := categoryDefaults[category]; ok {
		return info
	}
	return unmappedFallback
}
