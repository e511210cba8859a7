package handler

import (
	"net/http"

	"github.com/aeworks/ops-api/internal/domain"
	"github.com/aeworks/ops-api/internal/service"
	"go.uber.org/zap"
)

type SystemHandler struct {
	systemService *service.SystemService
	logger        *zap.Logger
}

func NewSystemHandler(systemService *service.SystemService, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{systemService: systemService, logger: logger}
}

// Meta godoc
// @Summary Connection state
// @Tags System
// @Produce json
// @Success 200 {object} domain.SystemMetaView
// @Security ApiKeyAuth
// @Router /system/meta [get]
func (h *SystemHandler) Meta(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.systemService.Meta(r.Context()).View())
}

// Connect godoc
// @Summary Connect a cloud account
// @Description Stores the access token used by background syncs. The account email is read from the ID token when not given.
// @Tags System
// @Accept json
// @Produce json
// @Param request body domain.ConnectRequest true "Tokens"
// @Success 200 {object} domain.SystemMetaView
// @Failure 400 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /system/connect [post]
func (h *SystemHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req domain.ConnectRequest
	if !decodeRequest(w, r, &req, false) {
		return
	}
	meta, err := h.systemService.Connect(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.logger, err, "connect account")
		return
	}
	respondJSON(w, http.StatusOK, meta.View())
}

// Disconnect godoc
// @Summary Disconnect the cloud account
// @Tags System
// @Produce json
// @Success 200 {object} domain.SystemMetaView
// @Failure 409 {object} domain.APIError "Vault backend has no account to disconnect"
// @Security ApiKeyAuth
// @Router /system/disconnect [post]
func (h *SystemHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	meta, err := h.systemService.Disconnect(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "disconnect account")
		return
	}
	respondJSON(w, http.StatusOK, meta.View())
}
