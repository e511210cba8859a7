package costing

import (
	"strings"

	"github.com/aeworks/ops-api/internal/domain"
)

// Rate variable names as stored in project.costingVariables and in the
// defaultCostingVariables dataset.
const (
	WorkdayHours = "workdayHours"

	FitterDailyRate  = "fitterDailyRate"
	QAQCDailyRate    = "qaqcDailyRate"
	CleanerDailyRate = "cleanerDailyRate"
	PainterDailyRate = "painterDailyRate"
	PackerDailyRate  = "packerDailyRate"

	FittingHoursPerMeter = "fittingHoursPerMeter"
	MetersPerCuttingDisc = "metersPerCuttingDisc"
	CuttingDiscCost      = "cuttingDiscCost"
	ElectrodesPerMeter   = "electrodesPerMeter"
	ElectrodeCost        = "electrodeCost"

	AssemblyHoursPerFrame = "assemblyHoursPerFrame"
	TestingHoursPerFrame  = "testingHoursPerFrame"

	CleaningSqmPerHour = "cleaningSqmPerHour"
	BrushesPerSqm      = "brushesPerSqm"
	BrushCost          = "brushCost"
	SandpaperPerSqm    = "sandpaperPerSqm"
	SandpaperCost      = "sandpaperCost"

	PrimingSqmPerHour        = "primingSqmPerHour"
	PaintingSqmPerHour       = "paintingSqmPerHour"
	PackagingMinutesPerFrame = "packagingMinutesPerFrame"

	FacilityDailyRate = "facilityDailyRate"
	PowerDailyRate    = "powerDailyRate"
	AdminDailyRate    = "adminDailyRate"

	// Whole percentages: 10 means 10%.
	SupervisionPercent = "supervisionPercent"
	MarkupPercent      = "markupPercent"

	DesignCost = "designCost"
)

// Variables maps variable names to values.
type Variables map[string]float64

// DefaultVariables is the built-in rate table used when neither the project
// nor the defaultCostingVariables dataset supplies a value.
func DefaultVariables() Variables {
	return Variables{
		WorkdayHours:             8,
		FitterDailyRate:          350,
		QAQCDailyRate:            400,
		CleanerDailyRate:         200,
		PainterDailyRate:         250,
		PackerDailyRate:          180,
		FittingHoursPerMeter:     0.5,
		MetersPerCuttingDisc:     10,
		CuttingDiscCost:          15,
		ElectrodesPerMeter:       2,
		ElectrodeCost:            1.5,
		AssemblyHoursPerFrame:    1,
		TestingHoursPerFrame:     0.25,
		CleaningSqmPerHour:       4,
		BrushesPerSqm:            0.1,
		BrushCost:                12,
		SandpaperPerSqm:          0.5,
		SandpaperCost:            3,
		PrimingSqmPerHour:        6,
		PaintingSqmPerHour:       5,
		PackagingMinutesPerFrame: 15,
		FacilityDailyRate:        500,
		PowerDailyRate:           150,
		AdminDailyRate:           200,
		SupervisionPercent:       10,
		DesignCost:               0,
		MarkupPercent:            25,
	}
}

// Get returns the value of name, zero when unset.
func (v Variables) Get(name string) float64 {
	return v[name]
}

// With returns a copy of v overlaid with override.
func (v Variables) With(override Variables) Variables {
	out := make(Variables, len(v)+len(override))
	for k, x := range v {
		out[k] = x
	}
	for k, x := range override {
		out[k] = x
	}
	return out
}

// FromProject converts a project's stored variables.
func FromProject(p *domain.Project) Variables {
	out := make(Variables, len(p.CostingVariables))
	for k, n := range p.CostingVariables {
		out[k] = n.Float()
	}
	return out
}

// FromRecords reads the defaultCostingVariables dataset. Each record is either
// {key|name, value} or a single object of name/value pairs.
func FromRecords(records []domain.Record) Variables {
	out := make(Variables)
	for _, r := range records {
		key := r.String("key")
		if key == "" {
			key = r.String("name")
		}
		if key != "" {
			if v, ok := r["value"]; ok {
				out[key] = domain.AnyNumber(v)
			}
			continue
		}
		for k, v := range r {
			if k == domain.FieldID || k == domain.FieldUpdatedAt || strings.HasPrefix(k, "_") {
				continue
			}
			out[k] = domain.AnyNumber(v)
		}
	}
	return out
}
