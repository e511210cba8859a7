// Package costing derives job and project costs from take-off lines, the
// materials catalogs and a rate-variable table. Nothing is rounded until
// FormatAmount.
package costing

import (
	"math"
	"strconv"
	"strings"

	"github.com/aeworks/ops-api/internal/domain"
)

// Line kinds.
const (
	KindLinear   = "linear"
	KindCladding = "cladding"
	KindFinish   = "finish"
)

// Plates and panels are costed per metre like sections; only sheet and glass
// stock is costed by area.
var claddingKeywords = []string{"sheet", "glass"}

// IsCladding reports whether a framing material is sheet-like.
func IsCladding(material string) bool {
	m := strings.ToLower(material)
	for _, kw := range claddingKeywords {
		if strings.Contains(m, kw) {
			return true
		}
	}
	return false
}

// LineCost is the costed form of one take-off line.
type LineCost struct {
	Material     string  `json:"material"`
	Kind         string  `json:"kind"`
	Matched      bool    `json:"matched"`
	UnitRate     float64 `json:"unitRate"`
	Cost         float64 `json:"cost"`
	SurfaceArea  float64 `json:"surfaceArea"`
	LinearMeters float64 `json:"linearMeters"`
	Parts        float64 `json:"parts"`
}

// TaskCost is one labour task of a job.
type TaskCost struct {
	Hours       float64 `json:"hours"`
	Labor       float64 `json:"labor"`
	Consumables float64 `json:"consumables"`
}

// JobCost is the breakdown for one job.
type JobCost struct {
	JobID           string     `json:"jobId"`
	JobName         string     `json:"jobName"`
	Lines           []LineCost `json:"lines"`
	FramingCost     float64    `json:"framingCost"`
	FinishesCost    float64    `json:"finishesCost"`
	MaterialCost    float64    `json:"materialCost"`
	LinearMeters    float64    `json:"linearMeters"`
	SurfaceArea     float64    `json:"surfaceArea"`
	PartCount       float64    `json:"partCount"`
	Fitting         TaskCost   `json:"fitting"`
	QAQC            TaskCost   `json:"qaqc"`
	Cleaning        TaskCost   `json:"cleaning"`
	Priming         TaskCost   `json:"priming"`
	Painting        TaskCost   `json:"painting"`
	Packaging       TaskCost   `json:"packaging"`
	ProductionHours float64    `json:"productionHours"`
	LaborCost       float64    `json:"laborCost"`
	ConsumablesCost float64    `json:"consumablesCost"`
	Overhead        float64    `json:"overhead"`
	Total           float64    `json:"total"`
}

// ProjectCost is the full project breakdown.
type ProjectCost struct {
	ProjectCode string    `json:"projectCode"`
	Jobs        []JobCost `json:"jobs"`
	JobsTotal   float64   `json:"jobsTotal"`
	DesignCost  float64   `json:"designCost"`
	TotalCost   float64   `json:"totalCost"`
	SalePrice   float64   `json:"salePrice"`
	Profit      float64   `json:"profit"`
	Variables   Variables `json:"variables"`
}

// Engine costs projects against a fixed pair of catalogs.
type Engine struct {
	framing  map[string]domain.FramingMaterial
	finishes map[string]domain.FinishMaterial
}

func catalogKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewEngine indexes the catalogs by material name. The first entry wins
// when a name repeats.
func NewEngine(framing []domain.FramingMaterial, finishes []domain.FinishMaterial) *Engine {
	e := &Engine{
		framing:  make(map[string]domain.FramingMaterial, len(framing)),
		finishes: make(map[string]domain.FinishMaterial, len(finishes)),
	}
	for _, m := range framing {
		k := catalogKey(m.Name)
		if _, ok := e.framing[k]; !ok && k != "" {
			e.framing[k] = m
		}
	}
	for _, m := range finishes {
		k := catalogKey(m.Name)
		if _, ok := e.finishes[k]; !ok && k != "" {
			e.finishes[k] = m
		}
	}
	return e
}

// CalculateProjectCost costs project with the given catalogs. Project
// variables override DefaultVariables.
func CalculateProjectCost(project *domain.Project, framing []domain.FramingMaterial, finishes []domain.FinishMaterial) ProjectCost {
	return NewEngine(framing, finishes).Project(project, DefaultVariables().With(FromProject(project)))
}

// Project costs every job of p with vars.
func (e *Engine) Project(p *domain.Project, vars Variables) ProjectCost {
	result := ProjectCost{
		ProjectCode: p.ProjectCode,
		Jobs:        make([]JobCost, 0, len(p.Jobs)),
		Variables:   vars,
	}
	for _, job := range p.Jobs {
		jc := e.Job(job, vars)
		result.Jobs = append(result.Jobs, jc)
		result.JobsTotal += jc.Total
	}
	result.DesignCost = vars.Get(DesignCost)
	result.TotalCost = result.JobsTotal + result.DesignCost
	result.SalePrice = result.TotalCost * (1 + vars.Get(MarkupPercent)/100)
	result.Profit = result.SalePrice - result.TotalCost
	return result
}

// Job costs a single job.
func (e *Engine) Job(job domain.Job, vars Variables) JobCost {
	jc := JobCost{JobID: job.ID, JobName: job.Name}

	for _, item := range job.FramingTakeOff {
		line := e.framingLine(item)
		jc.Lines = append(jc.Lines, line)
		jc.FramingCost += line.Cost
		jc.SurfaceArea += line.SurfaceArea
		jc.LinearMeters += line.LinearMeters
		jc.PartCount += line.Parts
	}
	for _, item := range job.FinishesTakeOff {
		line := e.finishLine(item)
		jc.Lines = append(jc.Lines, line)
		jc.FinishesCost += line.Cost
	}
	jc.MaterialCost = jc.FramingCost + jc.FinishesCost

	workday := vars.Get(WorkdayHours)
	labor := func(hours, dailyRate float64) float64 {
		return div(hours, workday) * dailyRate
	}

	jc.Fitting.Hours = jc.LinearMeters * vars.Get(FittingHoursPerMeter)
	jc.Fitting.Labor = labor(jc.Fitting.Hours, vars.Get(FitterDailyRate))
	jc.Fitting.Consumables = units(div(jc.LinearMeters, vars.Get(MetersPerCuttingDisc)))*vars.Get(CuttingDiscCost) +
		units(jc.LinearMeters*vars.Get(ElectrodesPerMeter))*vars.Get(ElectrodeCost)

	jc.QAQC.Hours = jc.PartCount * (vars.Get(AssemblyHoursPerFrame) + vars.Get(TestingHoursPerFrame))
	jc.QAQC.Labor = labor(jc.QAQC.Hours, vars.Get(QAQCDailyRate))

	jc.Cleaning.Hours = div(jc.SurfaceArea, vars.Get(CleaningSqmPerHour))
	jc.Cleaning.Labor = labor(jc.Cleaning.Hours, vars.Get(CleanerDailyRate))
	jc.Cleaning.Consumables = units(jc.SurfaceArea*vars.Get(BrushesPerSqm))*vars.Get(BrushCost) +
		units(jc.SurfaceArea*vars.Get(SandpaperPerSqm))*vars.Get(SandpaperCost)

	jc.Priming.Hours = div(jc.SurfaceArea, vars.Get(PrimingSqmPerHour))
	jc.Priming.Labor = labor(jc.Priming.Hours, vars.Get(PainterDailyRate))

	jc.Painting.Hours = div(jc.SurfaceArea, vars.Get(PaintingSqmPerHour))
	jc.Painting.Labor = labor(jc.Painting.Hours, vars.Get(PainterDailyRate))

	jc.Packaging.Hours = jc.PartCount * vars.Get(PackagingMinutesPerFrame) / 60
	jc.Packaging.Labor = labor(jc.Packaging.Hours, vars.Get(PackerDailyRate))

	for _, t := range []TaskCost{jc.Fitting, jc.QAQC, jc.Cleaning, jc.Priming, jc.Painting, jc.Packaging} {
		jc.ProductionHours += t.Hours
		jc.LaborCost += t.Labor
		jc.ConsumablesCost += t.Consumables
	}

	// Overhead follows time consumed, not material value.
	dailyOverhead := vars.Get(FacilityDailyRate) + vars.Get(PowerDailyRate) + vars.Get(AdminDailyRate)
	jc.Overhead = div(jc.ProductionHours, workday)*dailyOverhead +
		jc.LaborCost*vars.Get(SupervisionPercent)/100

	jc.Total = jc.MaterialCost + jc.LaborCost + jc.ConsumablesCost + jc.Overhead
	return jc
}

func (e *Engine) framingLine(item domain.FramingItem) LineCost {
	length, width, qty := item.Length.Float(), item.Width.Float(), item.Qty.Float()
	m, ok := e.framing[catalogKey(item.Material)]
	line := LineCost{Material: item.Material, Matched: ok, UnitRate: m.Rate}

	if IsCladding(item.Material) {
		line.Kind = KindCladding
		area := length * width * qty
		line.Cost = area * m.Rate
		line.SurfaceArea = area * 2
		return line
	}

	line.Kind = KindLinear
	meters := length * qty
	line.Cost = meters * m.Rate
	line.SurfaceArea = meters * m.SurfaceAreaFactor
	line.LinearMeters = meters
	line.Parts = qty
	return line
}

func (e *Engine) finishLine(item domain.FinishItem) LineCost {
	m, ok := e.finishes[catalogKey(item.Material)]
	return LineCost{
		Material: item.Material,
		Kind:     KindFinish,
		Matched:  ok,
		UnitRate: m.Price,
		Cost:     item.Qty.Float() * m.Price,
	}
}

// div returns a/b, or zero when b is not positive.
func div(a, b float64) float64 {
	if b <= 0 {
		return 0
	}
	return a / b
}

// units rounds a consumable quantity up to whole units.
func units(q float64) float64 {
	if q <= 0 {
		return 0
	}
	return math.Ceil(q)
}

// FormatAmount renders an amount with two decimals for display.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', 2, 64)
}
