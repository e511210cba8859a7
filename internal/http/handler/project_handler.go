package handler

import (
	"net/http"
	"time"

	"github.com/aeworks/ops-api/internal/domain"
	"github.com/aeworks/ops-api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	costingService *service.CostingService
	logger         *zap.Logger
}

func NewProjectHandler(projectService *service.ProjectService, costingService *service.CostingService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		costingService: costingService,
		logger:         logger,
	}
}

// List godoc
// @Summary List projects
// @Description Get every project record from the local store
// @Tags Projects
// @Produce json
// @Success 200 {array} object
// @Failure 401 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.projectService.List(r.Context()))
}

// Get godoc
// @Summary Get project
// @Description Get a project by code. Revision suffixes are ignored when no exact match exists.
// @Tags Projects
// @Produce json
// @Param code path string true "Project code"
// @Success 200 {object} object
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /projects/{code} [get]
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectService.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		handleServiceError(w, h.logger, err, "get project")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// Create godoc
// @Summary Create project
// @Description Create a project with a generated code, one job and the default costing variables
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body domain.CreateProjectRequest true "Project data"
// @Success 201 {object} object
// @Failure 400 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProjectRequest
	if !decodeRequest(w, r, &req, false) {
		return
	}

	project, err := h.projectService.Create(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create project")
		return
	}

	w.Header().Set("Location", "/api/v1/projects/"+project.String(domain.FieldProjectCode))
	respondJSON(w, http.StatusCreated, project)
}

// GenerateCode godoc
// @Summary Preview project code
// @Description Returns the code the next project with this name would get
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body domain.GenerateCodeRequest true "Project name"
// @Success 200 {object} domain.GenerateCodeResponse
// @Failure 400 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /projects/generate-code [post]
func (h *ProjectHandler) GenerateCode(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateCodeRequest
	if !decodeRequest(w, r, &req, false) {
		return
	}
	code := h.projectService.GenerateProjectCode(r.Context(), req.Name, time.Now())
	respondJSON(w, http.StatusOK, domain.GenerateCodeResponse{ProjectCode: code})
}

// RequestFeedback godoc
// @Summary Request customer feedback
// @Tags Projects
// @Produce json
// @Param code path string true "Project code"
// @Success 200 {object} object
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /projects/{code}/feedback/request [post]
func (h *ProjectHandler) RequestFeedback(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectService.RequestFeedback(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		handleServiceError(w, h.logger, err, "request feedback")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// VerifyFeedback godoc
// @Summary Verify received feedback
// @Tags Projects
// @Accept json
// @Produce json
// @Param code path string true "Project code"
// @Param request body domain.VerifyFeedbackRequest true "Verifier"
// @Success 200 {object} object
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /projects/{code}/feedback/verify [post]
func (h *ProjectHandler) VerifyFeedback(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyFeedbackRequest
	if !decodeRequest(w, r, &req, false) {
		return
	}
	project, err := h.projectService.VerifyFeedback(r.Context(), chi.URLParam(r, "code"), req.VerifiedBy)
	if err != nil {
		handleServiceError(w, h.logger, err, "verify feedback")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// UpdateTracking godoc
// @Summary Update closeout checklist
// @Tags Projects
// @Accept json
// @Produce json
// @Param code path string true "Project code"
// @Param request body domain.UpdateTrackingRequest true "Checklist flags"
// @Success 200 {object} object
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /projects/{code}/tracking [put]
func (h *ProjectHandler) UpdateTracking(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateTrackingRequest
	if !decodeRequest(w, r, &req, false) {
		return
	}
	project, err := h.projectService.UpdateTracking(r.Context(), chi.URLParam(r, "code"), req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update tracking")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// UpdateStatus godoc
// @Summary Move project status
// @Description Closing (100) requires verified feedback and a complete checklist
// @Tags Projects
// @Accept json
// @Produce json
// @Param code path string true "Project code"
// @Param request body domain.UpdateStatusRequest true "New status"
// @Success 200 {object} object
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /projects/{code}/status [put]
func (h *ProjectHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateStatusRequest
	if !decodeRequest(w, r, &req, false) {
		return
	}
	project, err := h.projectService.UpdateStatus(r.Context(), chi.URLParam(r, "code"), req.Status)
	if err != nil {
		handleServiceError(w, h.logger, err, "update status")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// Cost godoc
// @Summary Cost a stored project
// @Tags Costing
// @Produce json
// @Param code path string true "Project code"
// @Success 200 {object} costing.ProjectCost
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /projects/{code}/cost [get]
func (h *ProjectHandler) Cost(w http.ResponseWriter, r *http.Request) {
	result, err := h.costingService.CostProject(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		handleServiceError(w, h.logger, err, "cost project")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// PreviewCost godoc
// @Summary Cost an unsaved project
// @Description Catalogs left empty fall back to the stored framing and finishes catalogs
// @Tags Costing
// @Accept json
// @Produce json
// @Param request body domain.CostPreviewRequest true "Project and optional catalogs"
// @Success 200 {object} costing.ProjectCost
// @Failure 400 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /costing/preview [post]
func (h *ProjectHandler) PreviewCost(w http.ResponseWriter, r *http.Request) {
	var req domain.CostPreviewRequest
	if !decodeRequest(w, r, &req, false) {
		return
	}
	respondJSON(w, http.StatusOK, h.costingService.Preview(r.Context(), req))
}
