package service_test

import (
	"testing"

	"github.com/aeworks/ops-api/internal/costing"
	"github.com/aeworks/ops-api/internal/domain"
	"github.com/aeworks/ops-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCostingService_CostProject(t *testing.T) {
	f := newFixture(t)
	svc := service.NewCostingService(f.store, f.projects, zap.NewNop())

	f.saveLocal(t, domain.DatasetFramingMaterials, domain.Record{
		"id": "m1", "MATERIAL / GROUP": "Sections", "MATERIAL": "L50 x50 x3 - Angle Section", "RATE": "2363.64", "Surface Area": "0.2",
	})
	p := projectRecord("AEP-JD-001.24", "Acme", f.clock.Now())
	p["jobs"] = []any{map[string]any{
		"id":   "j1",
		"name": "Frame",
		"framingTakeOff": []any{
			map[string]any{"material": "L50 x50 x3 - Angle Section", "length": "2", "qty": 5},
		},
	}}
	p["costingVariables"] = map[string]any{"markupPercent": 0}
	f.saveLocal(t, domain.DatasetProjects, p)

	result, err := svc.CostProject(f.ctx, "AEP-JD-001.24")
	require.NoError(t, err)
	require.Len(t, result.Jobs, 1)

	job := result.Jobs[0]
	assert.InDelta(t, 23636.40, job.FramingCost, 1e-6)
	assert.InDelta(t, 2.0, job.SurfaceArea, 1e-6)
	assert.InDelta(t, 5.0, job.PartCount, 1e-6)
	assert.Equal(t, 0.0, result.Variables.Get(costing.MarkupPercent))
	// project value overrides, defaults fill the rest
	assert.Equal(t, costing.DefaultVariables().Get(costing.FitterDailyRate), result.Variables.Get(costing.FitterDailyRate))
	assert.InDelta(t, result.TotalCost, result.SalePrice, 1e-6)

	_, err = svc.CostProject(f.ctx, "AEP-NO-404.24")
	assert.ErrorIs(t, err, service.ErrProjectNotFound)
}

func TestCostingService_Preview(t *testing.T) {
	f := newFixture(t)
	svc := service.NewCostingService(f.store, f.projects, zap.NewNop())
	f.saveLocal(t, domain.DatasetDefaultCostingVariables, domain.Record{"id": "v1", "key": "designCost", "value": 500.0})

	result := svc.Preview(f.ctx, domain.CostPreviewRequest{
		Project: domain.Project{
			Jobs: []domain.Job{{FinishesTakeOff: []domain.FinishItem{{Material: "Primer", Qty: 2}}}},
			CostingVariables: map[string]domain.Number{"markupPercent": 10},
		},
		FinishesCatalog: []domain.FinishMaterial{{Name: "Primer", Price: 50}},
	})

	assert.InDelta(t, 100.0, result.Jobs[0].FinishesCost, 1e-6)
	assert.InDelta(t, 500.0, result.DesignCost, 1e-6)
	assert.InDelta(t, (result.JobsTotal+500)*1.1, result.SalePrice, 1e-6)
}
