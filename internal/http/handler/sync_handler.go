package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aeworks/ops-api/internal/domain"
	"github.com/aeworks/ops-api/internal/service"
	"go.uber.org/zap"
)

// RunLister reads sync run history. repository.SyncRunRepository implements it.
type RunLister interface {
	ListRecent(ctx context.Context, kind string, limit int) ([]domain.SyncRun, error)
}

type SyncHandler struct {
	syncService *service.SyncService
	runs        RunLister
	logger      *zap.Logger
}

func NewSyncHandler(syncService *service.SyncService, runs RunLister, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{syncService: syncService, runs: runs, logger: logger}
}

// Sync godoc
// @Summary Sync with the master document
// @Description Downloads the master document, merges it into the local store, uploads the result when it differs and ingests the feedback inbox. Failures are reported in the result body.
// @Tags Sync
// @Accept json
// @Produce json
// @Param trigger query string false "What caused the run" Enums(manual, visibility, connectivity) default(manual)
// @Param request body domain.SyncRequest false "Optional cloud token"
// @Success 200 {object} domain.SyncResult
// @Failure 400 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /sync [post]
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req domain.SyncRequest
	if !decodeRequest(w, r, &req, true) {
		return
	}

	trigger := r.URL.Query().Get("trigger")
	if trigger == "" {
		trigger = domain.TriggerManual
	}
	if !domain.IsExternalTrigger(trigger) {
		respondWithError(w, http.StatusBadRequest, "Unknown sync trigger: "+trigger)
		return
	}

	respondJSON(w, http.StatusOK, h.syncService.Sync(r.Context(), trigger, requestToken(r, req.Token)))
}

// Push godoc
// @Summary Upload the local store
// @Description Overwrites the master document with the local datasets, creating it when missing
// @Tags Sync
// @Accept json
// @Produce json
// @Param request body domain.SyncRequest false "Optional cloud token"
// @Success 200 {object} domain.SyncResult
// @Security ApiKeyAuth
// @Router /sync/push [post]
func (h *SyncHandler) Push(w http.ResponseWriter, r *http.Request) {
	var req domain.SyncRequest
	if !decodeRequest(w, r, &req, true) {
		return
	}
	respondJSON(w, http.StatusOK, h.syncService.PushToCloud(r.Context(), requestToken(r, req.Token)))
}

// Inbox godoc
// @Summary Ingest the feedback inbox
// @Tags Sync
// @Accept json
// @Produce json
// @Param request body domain.SyncRequest false "Optional cloud token"
// @Success 200 {object} domain.InboxResult
// @Security ApiKeyAuth
// @Router /sync/inbox [post]
func (h *SyncHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	var req domain.SyncRequest
	if !decodeRequest(w, r, &req, true) {
		return
	}
	respondJSON(w, http.StatusOK, h.syncService.SyncInbox(r.Context(), domain.TriggerManual, requestToken(r, req.Token)))
}

// Runs godoc
// @Summary Recent sync runs
// @Tags Sync
// @Produce json
// @Param kind query string false "Run kind" Enums(sync, push, inbox)
// @Param limit query int false "Max runs (max 200)" default(50)
// @Success 200 {array} domain.SyncRun
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /sync/runs [get]
func (h *SyncHandler) Runs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.runs.ListRecent(r.Context(), r.URL.Query().Get("kind"), limit)
	if err != nil {
		handleServiceError(w, h.logger, err, "list sync runs")
		return
	}
	respondJSON(w, http.StatusOK, runs)
}
