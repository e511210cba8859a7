package handler

import (
	"net/http"
	"net/url"

	"github.com/aeworks/ops-api/internal/domain"
	"github.com/aeworks/ops-api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FeedbackHandler manages inbox submissions that matched no project.
type FeedbackHandler struct {
	inboxService *service.InboxService
	logger       *zap.Logger
}

func NewFeedbackHandler(inboxService *service.InboxService, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{inboxService: inboxService, logger: logger}
}

// ListUnassigned godoc
// @Summary List unassigned feedback
// @Tags Feedback
// @Produce json
// @Success 200 {array} domain.UnassignedFeedback
// @Security ApiKeyAuth
// @Router /feedback/unassigned [get]
func (h *FeedbackHandler) ListUnassigned(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.inboxService.ListUnassigned(r.Context()))
}

// Link godoc
// @Summary Attach unassigned feedback to a project
// @Description Applies the feedback, deletes the inbox file and uploads the store
// @Tags Feedback
// @Accept json
// @Produce json
// @Param id path string true "Unassigned item id"
// @Param request body domain.LinkFeedbackRequest true "Target project"
// @Success 200 {object} object
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /feedback/unassigned/{id}/link [post]
func (h *FeedbackHandler) Link(w http.ResponseWriter, r *http.Request) {
	var req domain.LinkFeedbackRequest
	if !decodeRequest(w, r, &req, false) {
		return
	}
	project, err := h.inboxService.LinkUnassigned(r.Context(), requestToken(r, req.Token), unassignedID(r), req.ProjectCode)
	if err != nil {
		handleServiceError(w, h.logger, err, "link feedback")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// Discard godoc
// @Summary Discard unassigned feedback
// @Tags Feedback
// @Param id path string true "Unassigned item id"
// @Success 204
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /feedback/unassigned/{id} [delete]
func (h *FeedbackHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.inboxService.DiscardUnassigned(r.Context(), requestToken(r, ""), unassignedID(r)); err != nil {
		handleServiceError(w, h.logger, err, "discard feedback")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// unassignedID reads the item id. Ids of filesystem vaults contain a slash
// and arrive escaped.
func unassignedID(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if unescaped, err := url.PathUnescape(id); err == nil {
		return unescaped
	}
	return id
}
