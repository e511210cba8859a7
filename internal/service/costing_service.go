package service

import (
	"context"

	"github.com/aeworks/ops-api/internal/costing"
	"github.com/aeworks/ops-api/internal/domain"
	"github.com/aeworks/ops-api/internal/store"
	"go.uber.org/zap"
)

// CostingService costs stored and ad-hoc projects against the stored catalogs.
type CostingService struct {
	store    *store.LocalStore
	projects *ProjectService
	logger   *zap.Logger
}

// NewCostingService creates a new CostingService
func NewCostingService(localStore *store.LocalStore, projects *ProjectService, logger *zap.Logger) *CostingService {
	return &CostingService{store: localStore, projects: projects, logger: logger}
}

// costingDefaults is the built-in table overlaid with the
// defaultCostingVariables dataset.
func costingDefaults(records []domain.Record) costing.Variables {
	return costing.DefaultVariables().With(costing.FromRecords(records))
}

// CostProject costs a stored project. Variables missing from the project
// come from the defaults.
func (s *CostingService) CostProject(ctx context.Context, code string) (*costing.ProjectCost, error) {
	project, err := s.projects.GetTyped(ctx, code)
	if err != nil {
		return nil, err
	}
	result := s.cost(ctx, project, nil, nil)
	s.logger.Debug("Project costed",
		zap.String("projectCode", project.ProjectCode),
		zap.Float64("totalCost", result.TotalCost),
	)
	return &result, nil
}

// Preview costs an unsaved project. Empty catalogs fall back to the stored ones.
func (s *CostingService) Preview(ctx context.Context, req domain.CostPreviewRequest) *costing.ProjectCost {
	result := s.cost(ctx, &req.Project, req.FramingCatalog, req.FinishesCatalog)
	return &result
}

func (s *CostingService) cost(ctx context.Context, project *domain.Project, framing []domain.FramingMaterial, finishes []domain.FinishMaterial) costing.ProjectCost {
	if len(framing) == 0 {
		framing = domain.FramingCatalog(s.store.Get(ctx, domain.DatasetFramingMaterials))
	}
	if len(finishes) == 0 {
		finishes = domain.FinishesCatalog(s.store.Get(ctx, domain.DatasetFinishMaterials))
	}
	vars := costingDefaults(s.store.Get(ctx, domain.DatasetDefaultCostingVariables)).With(costing.FromProject(project))
	return costing.NewEngine(framing, finishes).Project(project, vars)
}
