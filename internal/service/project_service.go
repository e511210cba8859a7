package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aeworks/ops-api/internal/domain"
	"github.com/aeworks/ops-api/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProjectService handles project lifecycle on top of the projects dataset
type ProjectService struct {
	store   *store.LocalStore
	numbers NumberSequence
	logger  *zap.Logger
	now     func() time.Time
}

// NewProjectService creates a new ProjectService
func NewProjectService(localStore *store.LocalStore, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		store:  localStore,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source.
func (s *ProjectService) WithClock(now func() time.Time) *ProjectService {
	s.now = now
	return s
}

// List returns every project record.
func (s *ProjectService) List(ctx context.Context) []domain.Record {
	return s.store.Get(ctx, domain.DatasetProjects)
}

// Get returns the project with exactly code, compared after normalization.
func (s *ProjectService) Get(ctx context.Context, code string) (domain.Record, error) {
	project := findProject(s.List(ctx), code)
	if project == nil {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

// GetTyped returns the typed view of a project.
func (s *ProjectService) GetTyped(ctx context.Context, code string) (*domain.Project, error) {
	r, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	var p domain.Project
	if err := domain.DecodeRecord(r, &p); err != nil {
		return nil, fmt.Errorf("failed to read project %s: %w", code, err)
	}
	return &p, nil
}

// GenerateProjectCode returns the next free code for a project name.
func (s *ProjectService) GenerateProjectCode(ctx context.Context, name string, now time.Time) string {
	projects := s.List(ctx)
	codes := make([]string, 0, len(projects))
	for _, p := range projects {
		codes = append(codes, p.String(domain.FieldProjectCode))
	}
	return s.numbers.Next(name, now, codes)
}

// Create stores a new project with a generated code, status 0, no feedback,
// one empty job and the default costing variables.
func (s *ProjectService) Create(ctx context.Context, req domain.CreateProjectRequest) (domain.Record, error) {
	now := s.now()
	jobName := req.JobName
	if jobName == "" {
		jobName = "Main"
	}

	project := domain.Project{
		ID:          uuid.NewString(),
		ProjectCode: s.GenerateProjectCode(ctx, req.Name, now),
		Name:        req.Name,
		ClientName:  req.ClientName,
		Status:      domain.StatusEnquiry,
		Jobs: []domain.Job{{
			ID:              uuid.NewString(),
			Name:            jobName,
			FramingTakeOff:  []domain.FramingItem{},
			FinishesTakeOff: []domain.FinishItem{},
		}},
		CostingVariables: s.defaultVariables(ctx),
		TrackingData:     &domain.ProjectTrackingData{FeedbackStatus: domain.FeedbackNone},
		CreatedAt:        domain.FormatTimestamp(now),
		UpdatedAt:        domain.FormatTimestamp(now),
	}

	record, err := domain.EncodeRecord(project)
	if err != nil {
		return nil, err
	}
	projects := append(s.List(ctx), record)
	if err := s.store.Save(ctx, domain.DatasetProjects, projects); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}

	s.logger.Info("Project created",
		zap.String("projectCode", project.ProjectCode),
		zap.String("client", project.ClientName),
	)
	return record, nil
}

func (s *ProjectService) defaultVariables(ctx context.Context) map[string]domain.Number {
	out := make(map[string]domain.Number)
	for k, v := range costingDefaults(s.store.Get(ctx, domain.DatasetDefaultCostingVariables)) {
		out[k] = domain.Number(v)
	}
	return out
}

// RequestFeedback moves feedback from none to requested.
func (s *ProjectService) RequestFeedback(ctx context.Context, code string) (domain.Record, error) {
	return s.update(ctx, code, func(p *domain.Project) error {
		if p.FeedbackState() != domain.FeedbackNone {
			return fmt.Errorf("%w: %s to %s", ErrInvalidFeedbackTransition, p.FeedbackState(), domain.FeedbackRequested)
		}
		p.TrackingData.FeedbackStatus = domain.FeedbackRequested
		return nil
	})
}

// VerifyFeedback moves received feedback to verified, recording the verifier.
func (s *ProjectService) VerifyFeedback(ctx context.Context, code, verifiedBy string) (domain.Record, error) {
	return s.update(ctx, code, func(p *domain.Project) error {
		if p.FeedbackState() != domain.FeedbackReceived {
			return fmt.Errorf("%w: %s to %s", ErrInvalidFeedbackTransition, p.FeedbackState(), domain.FeedbackVerified)
		}
		p.TrackingData.FeedbackStatus = domain.FeedbackVerified
		if p.TrackingData.CustomerFeedback != nil {
			p.TrackingData.CustomerFeedback.VerifiedBy = verifiedBy
			p.TrackingData.CustomerFeedback.VerifiedAt = domain.FormatTimestamp(s.now())
		}
		return nil
	})
}

// UpdateTracking sets closeout checklist flags.
func (s *ProjectService) UpdateTracking(ctx context.Context, code string, req domain.UpdateTrackingRequest) (domain.Record, error) {
	return s.update(ctx, code, func(p *domain.Project) error {
		if req.QCSignedOff != nil {
			p.TrackingData.QCSignedOff = *req.QCSignedOff
		}
		if req.DeliveryConfirmed != nil {
			p.TrackingData.DeliveryConfirmed = *req.DeliveryConfirmed
		}
		if req.PaymentReceived != nil {
			p.TrackingData.PaymentReceived = *req.PaymentReceived
		}
		return nil
	})
}

// UpdateStatus moves a project on the progress scale. Closing requires
// verified feedback and a complete checklist.
func (s *ProjectService) UpdateStatus(ctx context.Context, code string, status domain.ProjectStatus) (domain.Record, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.update(ctx, code, func(p *domain.Project) error {
		if status == domain.StatusClosed && !p.CloseoutReady() {
			return ErrCloseoutBlocked
		}
		p.Status = status
		return nil
	})
}

// update applies fn to the typed view and writes the changed fields back
// into the stored record, leaving unknown fields intact.
func (s *ProjectService) update(ctx context.Context, code string, fn func(p *domain.Project) error) (domain.Record, error) {
	projects := s.List(ctx)
	record := findProject(projects, code)
	if record == nil {
		return nil, ErrProjectNotFound
	}

	var p domain.Project
	if err := domain.DecodeRecord(record, &p); err != nil {
		return nil, fmt.Errorf("failed to read project %s: %w", code, err)
	}
	if p.TrackingData == nil {
		p.TrackingData = &domain.ProjectTrackingData{FeedbackStatus: domain.FeedbackNone}
	}
	if err := fn(&p); err != nil {
		return nil, err
	}

	tracking, err := domain.EncodeRecord(p.TrackingData)
	if err != nil {
		return nil, err
	}
	// keep tracking fields this service does not model
	merged := record.Object(domain.FieldTrackingData).Clone()
	for k, v := range tracking {
		merged[k] = v
	}
	record[domain.FieldTrackingData] = merged
	if p.Status != "" {
		record[domain.FieldStatus] = string(p.Status)
	}
	record.Touch(s.now())

	if err := s.store.Save(ctx, domain.DatasetProjects, projects); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	return record, nil
}
