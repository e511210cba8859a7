package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aeworks/ops-api/internal/domain"
	"github.com/aeworks/ops-api/internal/events"
	"github.com/aeworks/ops-api/internal/merge"
	"github.com/aeworks/ops-api/internal/store"
	"github.com/aeworks/ops-api/internal/vault"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunRecorder stores sync run history. repository.SyncRunRepository implements it.
type RunRecorder interface {
	Create(ctx context.Context, run *domain.SyncRun) error
}

// FeedbackNotifier is told about newly received customer feedback.
type FeedbackNotifier interface {
	NotifyFeedback(projectCode string)
}

// SyncService reconciles the local store with the shared master document.
// Runs are not serialized: overlapping runs converge through the merge rules.
type SyncService struct {
	store    *store.LocalStore
	meta     *store.MetaStore
	vault    Vault
	inbox    *InboxService
	pusher   *pusher
	runs     RunRecorder
	bus      events.Publisher
	notifier FeedbackNotifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewSyncService creates a new SyncService. runs may be nil.
func NewSyncService(
	localStore *store.LocalStore,
	meta *store.MetaStore,
	v Vault,
	inbox *InboxService,
	runs RunRecorder,
	bus events.Publisher,
	appName string,
	logger *zap.Logger,
) *SyncService {
	s := &SyncService{
		store:  localStore,
		meta:   meta,
		vault:  v,
		inbox:  inbox,
		runs:   runs,
		bus:    bus,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	s.pusher = &pusher{vault: v, store: localStore, meta: meta, name: appName, now: s.clock}
	return s
}

// WithNotifier sets the receiver of new-feedback notifications.
func (s *SyncService) WithNotifier(n FeedbackNotifier) *SyncService {
	s.notifier = n
	return s
}

// WithClock overrides the time source.
func (s *SyncService) WithClock(now func() time.Time) *SyncService {
	s.now = now
	return s
}

func (s *SyncService) clock() time.Time {
	return s.now()
}

// SyncWithCloud runs a manual sync.
func (s *SyncService) SyncWithCloud(ctx context.Context, token string) domain.SyncResult {
	return s.Sync(ctx, domain.TriggerManual, token)
}

// Sync merges every dataset with the master document, pushes the merged
// state back when it differs from the download, and then ingests the inbox.
// The master document is created from the local snapshot when none exists.
// Failures are reported in the result, never returned.
func (s *SyncService) Sync(ctx context.Context, trigger, token string) (result domain.SyncResult) {
	started := s.now()
	log := s.logger.With(zap.String("trigger", trigger))
	defer func() { s.record(ctx, domain.RunKindSync, trigger, started, result) }()

	token = resolveToken(ctx, s.meta, token)
	if token == "" {
		log.Info("Sync skipped, no cloud token")
		return domain.SyncResult{AuthRequired: true, Message: "Cloud authorization required"}
	}

	handle := s.pusher.stored(ctx)
	if handle != nil {
		doc, err := s.vault.DownloadDocument(ctx, handle, token)
		switch {
		case err == nil:
			return s.mergeWith(ctx, log, started, handle, doc, token)
		case !vault.IsNotFound(err):
			return s.failure(log, err)
		}
		log.Info("Stored master document id is stale, searching", zap.String("fileId", handle.ID))
	}

	handle, err := s.vault.LocateMasterDocument(ctx, token)
	if err != nil {
		return s.failure(log, err)
	}

	if handle == nil {
		handle, err = s.vault.CreateMasterDocument(ctx, token)
		if err != nil {
			return s.failure(log, err)
		}
		if err := s.pusher.push(ctx, handle, token, nil); err != nil {
			return s.failure(log, err)
		}
		s.bus.Publish(domain.ChangeEvent{Dataset: domain.AllDatasets})
		log.Info("Master document created from local data", zap.String("fileId", handle.ID))
		return domain.SyncResult{Success: true, Created: true, Pushed: true, Message: "Created master document"}
	}

	doc, err := s.vault.DownloadDocument(ctx, handle, token)
	if err != nil {
		return s.failure(log, err)
	}
	return s.mergeWith(ctx, log, started, handle, doc, token)
}

// mergeWith merges every dataset with doc, pushes when anything changed and
// ingests the inbox.
func (s *SyncService) mergeWith(ctx context.Context, log *zap.Logger, started time.Time, handle *vault.FileHandle, doc *vault.Document, token string) domain.SyncResult {
	downloaded := make(map[string]string, len(domain.Datasets))
	for _, name := range domain.Datasets {
		remote := doc.Dataset(name)
		downloaded[name] = canonical(remote)

		merged := merge.Merge(name, s.store.Get(ctx, name), remote)
		if err := s.store.Save(ctx, name, merged); err != nil {
			log.Error("Failed to save merged dataset", zap.String("dataset", name), zap.Error(err))
			return domain.SyncResult{Message: fmt.Sprintf("Failed to save %s: %v", name, err)}
		}
	}

	result := domain.SyncResult{Success: true}
	var changed []string
	for name, records := range s.store.Snapshot(ctx) {
		if canonical(records) != downloaded[name] {
			changed = append(changed, name)
		}
	}

	if len(changed) > 0 {
		if err := s.pusher.push(ctx, handle, token, doc); err != nil {
			return s.failure(log, err)
		}
		result.Pushed = true
		log.Info("Pushed merged datasets", zap.Strings("changed", changed))
	} else if err := s.pusher.remember(ctx, handle); err != nil {
		log.Warn("Failed to update system meta", zap.Error(err))
	}

	inbox := s.inbox.SyncInboxFeedback(ctx, token, s.onFeedback)
	result.InboxCount = inbox.Count
	if !inbox.Success {
		log.Warn("Inbox ingestion failed", zap.String("message", inbox.Message))
	}

	s.bus.Publish(domain.ChangeEvent{Dataset: domain.AllDatasets})

	result.Message = "Sync complete"
	if inbox.Count > 0 {
		result.Message = fmt.Sprintf("Sync complete, %d new feedback", inbox.Count)
	}
	log.Info("Sync finished",
		zap.Bool("pushed", result.Pushed),
		zap.Int("inboxCount", inbox.Count),
		zap.Duration("duration", s.now().Sub(started)),
	)
	return result
}

// PushToCloud overwrites the master document with the full local snapshot.
// The stored document id is tried first; a stale id falls back to search.
func (s *SyncService) PushToCloud(ctx context.Context, token string) (result domain.SyncResult) {
	started := s.now()
	log := s.logger.With(zap.String("trigger", domain.TriggerManual))
	defer func() { s.record(ctx, domain.RunKindPush, domain.TriggerManual, started, result) }()

	token = resolveToken(ctx, s.meta, token)
	if token == "" {
		return domain.SyncResult{AuthRequired: true, Message: "Cloud authorization required"}
	}

	created, err := s.pusher.pushKnown(ctx, token, log)
	if err != nil {
		return s.failure(log, err)
	}
	return domain.SyncResult{Success: true, Pushed: true, Created: created, Message: "Pushed local data"}
}

// SyncInbox runs inbox ingestion on its own.
func (s *SyncService) SyncInbox(ctx context.Context, trigger, token string) domain.InboxResult {
	started := s.now()
	res := s.inbox.SyncInboxFeedback(ctx, token, s.onFeedback)
	if res.Count > 0 {
		s.bus.Publish(domain.ChangeEvent{Dataset: domain.DatasetProjects})
	}
	s.record(ctx, domain.RunKindInbox, trigger, started, domain.SyncResult{
		Success:    res.Success,
		Message:    res.Message,
		InboxCount: res.Count,
	})
	return res
}

func (s *SyncService) onFeedback(projectCode string) {
	if s.notifier != nil {
		s.notifier.NotifyFeedback(projectCode)
	}
}

func (s *SyncService) failure(log *zap.Logger, err error) domain.SyncResult {
	log.Warn("Sync failed", zap.Error(err))
	return domain.SyncResult{
		AuthRequired: errors.Is(err, vault.ErrAuthRequired),
		Message:      vault.Message(err),
	}
}

func (s *SyncService) record(ctx context.Context, kind, trigger string, started time.Time, result domain.SyncResult) {
	if s.runs == nil {
		return
	}
	run := &domain.SyncRun{
		ID:         uuid.NewString(),
		Source:     trigger,
		Kind:       kind,
		Success:    result.Success,
		Message:    result.Message,
		InboxCount: result.InboxCount,
		StartedAt:  started,
		FinishedAt: s.now(),
	}
	// history must outlive a cancelled request
	if err := s.runs.Create(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Warn("Failed to record sync run", zap.Error(err))
	}
}

// canonical renders records for comparison. Map keys marshal sorted, so
// equal data yields equal strings.
func canonical(records []domain.Record) string {
	if len(records) == 0 {
		return "[]"
	}
	data, err := json.Marshal(records)
	if err != nil {
		return ""
	}
	return string(data)
}
