package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aeworks/ops-api/internal/domain"
	"github.com/aeworks/ops-api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type DatasetHandler struct {
	datasetService *service.DatasetService
	logger         *zap.Logger
}

func NewDatasetHandler(datasetService *service.DatasetService, logger *zap.Logger) *DatasetHandler {
	return &DatasetHandler{datasetService: datasetService, logger: logger}
}

// Get godoc
// @Summary Read a dataset
// @Tags Datasets
// @Produce json
// @Param name path string true "Dataset name"
// @Success 200 {array} object
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /datasets/{name} [get]
func (h *DatasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	records, err := h.datasetService.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		handleServiceError(w, h.logger, err, "read dataset")
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// Save godoc
// @Summary Replace a dataset
// @Description Records without id get one; every record is stamped with updatedAt
// @Tags Datasets
// @Accept json
// @Produce json
// @Param name path string true "Dataset name"
// @Param records body []object true "Records"
// @Success 200 {array} object
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /datasets/{name} [put]
func (h *DatasetHandler) Save(w http.ResponseWriter, r *http.Request) {
	var records []domain.Record
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: expected an array of records")
		return
	}

	stored, err := h.datasetService.Save(r.Context(), chi.URLParam(r, "name"), records)
	if err != nil {
		handleServiceError(w, h.logger, err, "save dataset")
		return
	}
	respondJSON(w, http.StatusOK, stored)
}

// GetLogo godoc
// @Summary Read the branding logo
// @Tags Datasets
// @Produce json
// @Success 200 {object} domain.SaveLogoRequest
// @Security ApiKeyAuth
// @Router /logo [get]
func (h *DatasetHandler) GetLogo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, domain.SaveLogoRequest{DataURL: h.datasetService.Logo(r.Context())})
}

// SaveLogo godoc
// @Summary Store the branding logo
// @Tags Datasets
// @Accept json
// @Param request body domain.SaveLogoRequest true "Logo as a data URL"
// @Success 204
// @Failure 400 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /logo [put]
func (h *DatasetHandler) SaveLogo(w http.ResponseWriter, r *http.Request) {
	var req domain.SaveLogoRequest
	if !decodeRequest(w, r, &req, false) {
		return
	}
	if err := h.datasetService.SaveLogo(r.Context(), req.DataURL); err != nil {
		handleServiceError(w, h.logger, err, "save logo")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
