package domain

// FramingMaterial is a framing catalog entry. Rate is per metre for linear
// sections and per square metre for cladding; SurfaceAreaFactor is m² per metre.
type FramingMaterial struct {
	Group             string  `json:"group" yaml:"group"`
	Name              string  `json:"name" yaml:"name"`
	Rate              float64 `json:"rate" yaml:"rate"`
	SurfaceAreaFactor float64 `json:"surfaceAreaFactor" yaml:"surfaceAreaFactor"`
}

// FinishMaterial is a finishes catalog entry.
type FinishMaterial struct {
	Group    string  `json:"group" yaml:"group"`
	Name     string  `json:"name" yaml:"name"`
	Price    float64 `json:"price" yaml:"price"`
	Coverage float64 `json:"coverage" yaml:"coverage"`
}

// Legacy spreadsheet column names still present in stored catalogs.
var (
	legacyGroupKeys    = []string{"group", "MATERIAL / GROUP", "GROUP"}
	legacyNameKeys     = []string{"name", "MATERIAL", "DESCRIPTION", "ITEM"}
	legacyRateKeys     = []string{"rate", "RATE"}
	legacyAreaKeys     = []string{"surfaceAreaFactor", "Surface Area", "SURFACE AREA"}
	legacyPriceKeys    = []string{"price", "PRICE", "RATE"}
	legacyCoverageKeys = []string{"coverage", "COVERAGE"}
)

func firstString(r Record, keys []string) string {
	for _, k := range keys {
		if s := r.String(k); s != "" {
			return s
		}
	}
	return ""
}

func firstNumber(r Record, keys []string) float64 {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return AnyNumber(v)
		}
	}
	return 0
}

// FramingMaterialFromRecord reads a catalog record in either the named-field
// or the legacy column form.
func FramingMaterialFromRecord(r Record) FramingMaterial {
	return FramingMaterial{
		Group:             firstString(r, legacyGroupKeys),
		Name:              firstString(r, legacyNameKeys),
		Rate:              firstNumber(r, legacyRateKeys),
		SurfaceAreaFactor: firstNumber(r, legacyAreaKeys),
	}
}

// FinishMaterialFromRecord reads a finishes record in either form.
func FinishMaterialFromRecord(r Record) FinishMaterial {
	return FinishMaterial{
		Group:    firstString(r, legacyGroupKeys),
		Name:     firstString(r, legacyNameKeys),
		Price:    firstNumber(r, legacyPriceKeys),
		Coverage: firstNumber(r, legacyCoverageKeys),
	}
}

// FramingCatalog adapts stored records.
func FramingCatalog(records []Record) []FramingMaterial {
	out := make([]FramingMaterial, 0, len(records))
	for _, r := range records {
		out = append(out, FramingMaterialFromRecord(r))
	}
	return out
}

// FinishesCatalog adapts stored records.
func FinishesCatalog(records []Record) []FinishMaterial {
	out := make([]FinishMaterial, 0, len(records))
	for _, r := range records {
		out = append(out, FinishMaterialFromRecord(r))
	}
	return out
}

// Record renders the named-field form, keeping an existing id.
func (m FramingMaterial) Record(id string) Record {
	r := Record{"group": m.Group, "name": m.Name, "rate": m.Rate, "surfaceAreaFactor": m.SurfaceAreaFactor}
	if id != "" {
		r[FieldID] = id
	}
	return r
}

// Record renders the named-field form, keeping an existing id.
func (m FinishMaterial) Record(id string) Record {
	r := Record{"group": m.Group, "name": m.Name, "price": m.Price, "coverage": m.Coverage}
	if id != "" {
		r[FieldID] = id
	}
	return r
}
