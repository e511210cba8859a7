package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aeworks/ops-api/internal/domain"
	"github.com/aeworks/ops-api/internal/store"
	"github.com/aeworks/ops-api/internal/vault"
	"go.uber.org/zap"
)

// FeedbackCallback is told the code of every project that received new feedback.
type FeedbackCallback func(projectCode string)

// InboxService consumes customer feedback files dropped in the shared inbox
// folder and applies them to matching projects.
type InboxService struct {
	store  *store.LocalStore
	meta   *store.MetaStore
	vault  Vault
	pusher *pusher
	logger *zap.Logger
	now    func() time.Time
}

// NewInboxService creates a new InboxService
func NewInboxService(
	localStore *store.LocalStore,
	meta *store.MetaStore,
	v Vault,
	appName string,
	logger *zap.Logger,
) *InboxService {
	s := &InboxService{
		store:  localStore,
		meta:   meta,
		vault:  v,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	s.pusher = &pusher{vault: v, store: localStore, meta: meta, name: appName, now: s.clock}
	return s
}

// WithClock overrides the time source.
func (s *InboxService) WithClock(now func() time.Time) *InboxService {
	s.now = now
	return s
}

func (s *InboxService) clock() time.Time {
	return s.now()
}

// SyncInboxFeedback processes every file in the inbox folder. A matched file
// is applied (unless the project's feedback is already verified) and then
// deleted; an unmatched one is recorded as unassigned feedback and left in
// place. One bad file never stops the batch.
func (s *InboxService) SyncInboxFeedback(ctx context.Context, token string, onNew FeedbackCallback) domain.InboxResult {
	token = resolveToken(ctx, s.meta, token)
	if token == "" {
		return domain.InboxResult{Success: false, Message: "Cloud authorization required"}
	}

	folder, err := s.vault.LocateInboxFolder(ctx, token)
	if err != nil {
		return domain.InboxResult{Success: false, Message: vault.Message(err)}
	}
	if folder == nil {
		s.logger.Debug("Feedback inbox folder not provisioned")
		return domain.InboxResult{Success: true, Message: "Inbox folder not found"}
	}

	files, err := s.vault.ListInbox(ctx, folder, token)
	if err != nil {
		return domain.InboxResult{Success: false, Message: vault.Message(err)}
	}

	projects := s.store.Get(ctx, domain.DatasetProjects)
	orphans := newOrphanSet(s.store.Get(ctx, domain.SlotUnassignedFeedback))

	result := domain.InboxResult{Success: true}
	now := s.now()

	for _, file := range files {
		log := s.logger.With(zap.String("fileId", file.ID), zap.String("file", file.Name))

		sub, err := s.readSubmission(ctx, file, token)
		if err != nil {
			log.Warn("Skipping unreadable inbox file", zap.Error(err))
			result.Failed++
			continue
		}
		if strings.TrimSpace(sub.Code) == "" {
			log.Warn("Skipping inbox file without project code")
			continue
		}

		project := matchSubmission(projects, sub.Code)
		if project == nil {
			if orphans.add(file.ID, sub, now) {
				result.Orphans++
				log.Info("Inbox feedback matched no project", zap.String("code", sub.Code))
			}
			continue
		}

		if applyFeedback(project, sub.Feedback, now) {
			result.Count++
			code := project.String(domain.FieldProjectCode)
			log.Info("Customer feedback received", zap.String("projectCode", code))
			if onNew != nil {
				onNew(code)
			}
		} else {
			log.Info("Feedback already verified, consuming file only")
		}

		if err := s.vault.DeleteInboxFile(ctx, file, token); err != nil {
			log.Warn("Failed to delete consumed inbox file", zap.Error(err))
			result.Failed++
			continue
		}
		orphans.remove(file.ID)
	}

	if orphans.dirty {
		if err := s.store.Save(ctx, domain.SlotUnassignedFeedback, orphans.records); err != nil {
			s.logger.Error("Failed to save unassigned feedback", zap.Error(err))
		}
	}

	if result.Count > 0 {
		if err := s.store.Save(ctx, domain.DatasetProjects, projects); err != nil {
			return domain.InboxResult{Success: false, Count: result.Count, Failed: result.Failed, Message: fmt.Sprintf("Failed to save projects: %v", err)}
		}
		if err := s.pushAll(ctx, token); err != nil {
			result.Message = vault.Message(err)
			s.logger.Warn("Failed to push feedback updates", zap.Error(err))
		}
	}

	if result.Message == "" {
		result.Message = fmt.Sprintf("Processed %d inbox files, %d new feedback", len(files), result.Count)
	}
	return result
}

func (s *InboxService) readSubmission(ctx context.Context, file vault.FileHandle, token string) (domain.InboxSubmission, error) {
	var sub domain.InboxSubmission
	body, err := s.vault.DownloadInboxFile(ctx, file, token)
	if err != nil {
		return sub, err
	}
	if err := json.Unmarshal(body, &sub); err != nil {
		return sub, fmt.Errorf("invalid inbox JSON: %w", err)
	}
	return sub, nil
}

func (s *InboxService) pushAll(ctx context.Context, token string) error {
	_, err := s.pusher.pushKnown(ctx, token, s.logger)
	return err
}

// ListUnassigned returns feedback that matched no project.
func (s *InboxService) ListUnassigned(ctx context.Context) []domain.UnassignedFeedback {
	records := s.store.Get(ctx, domain.SlotUnassignedFeedback)
	out := make([]domain.UnassignedFeedback, 0, len(records))
	for _, r := range records {
		var item domain.UnassignedFeedback
		if err := domain.DecodeRecord(r, &item); err != nil {
			continue
		}
		out = append(out, item)
	}
	return out
}

// LinkUnassigned applies an orphan to the project named by projectCode and
// consumes its inbox file.
func (s *InboxService) LinkUnassigned(ctx context.Context, token, itemID, projectCode string) (domain.Record, error) {
	token = resolveToken(ctx, s.meta, token)
	if token == "" {
		return nil, ErrAuthRequired
	}

	orphans := newOrphanSet(s.store.Get(ctx, domain.SlotUnassignedFeedback))
	item, ok := orphans.get(itemID)
	if !ok {
		return nil, ErrUnassignedNotFound
	}

	projects := s.store.Get(ctx, domain.DatasetProjects)
	project := findProject(projects, projectCode)
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if !applyFeedback(project, item.Feedback, s.now()) {
		return nil, fmt.Errorf("%w: feedback already verified", ErrInvalidFeedbackTransition)
	}
	if err := s.store.Save(ctx, domain.DatasetProjects, projects); err != nil {
		return nil, err
	}

	if err := s.vault.DeleteInboxFile(ctx, vault.FileHandle{ID: item.RemoteFileID}, token); err != nil {
		return nil, err
	}
	orphans.remove(itemID)
	if err := s.store.Save(ctx, domain.SlotUnassignedFeedback, orphans.records); err != nil {
		return nil, err
	}

	if err := s.pushAll(ctx, token); err != nil {
		s.logger.Warn("Failed to push linked feedback", zap.Error(err))
	}

	s.logger.Info("Linked unassigned feedback",
		zap.String("itemId", itemID),
		zap.String("projectCode", project.String(domain.FieldProjectCode)),
	)
	return project, nil
}

// DiscardUnassigned deletes an orphan and its inbox file.
func (s *InboxService) DiscardUnassigned(ctx context.Context, token, itemID string) error {
	token = resolveToken(ctx, s.meta, token)
	if token == "" {
		return ErrAuthRequired
	}

	orphans := newOrphanSet(s.store.Get(ctx, domain.SlotUnassignedFeedback))
	item, ok := orphans.get(itemID)
	if !ok {
		return ErrUnassignedNotFound
	}
	if err := s.vault.DeleteInboxFile(ctx, vault.FileHandle{ID: item.RemoteFileID}, token); err != nil {
		return err
	}
	orphans.remove(itemID)
	return s.store.Save(ctx, domain.SlotUnassignedFeedback, orphans.records)
}

// findProject returns the project whose normalized code equals code.
func findProject(projects []domain.Record, code string) domain.Record {
	want := domain.NormalizeCode(code)
	if want == "" {
		return nil
	}
	for _, p := range projects {
		if domain.NormalizeCode(p.String(domain.FieldProjectCode)) == want {
			return p
		}
	}
	return nil
}

// matchSubmission finds the project an inbox submission belongs to. An exact
// code match anywhere in the list beats a base-code match.
func matchSubmission(projects []domain.Record, code string) domain.Record {
	if p := findProject(projects, code); p != nil {
		return p
	}
	for _, p := range projects {
		if domain.CodesMatch(p.String(domain.FieldProjectCode), code) {
			return p
		}
	}
	return nil
}

// applyFeedback stores fb on project and marks it received. Verified
// feedback is never overwritten.
func applyFeedback(project domain.Record, fb *domain.CustomerFeedback, now time.Time) bool {
	tracking := project.Object(domain.FieldTrackingData)
	if tracking == nil {
		tracking = domain.Record{}
	}
	if domain.FeedbackStatus(tracking.String(domain.FieldFeedbackStatus)) == domain.FeedbackVerified {
		return false
	}

	var feedback domain.Record
	if fb != nil {
		feedback, _ = domain.EncodeRecord(fb)
	}
	tracking[domain.FieldCustomerFeedback] = feedback
	tracking[domain.FieldFeedbackStatus] = string(domain.FeedbackReceived)
	project[domain.FieldTrackingData] = tracking
	project.Touch(now)
	return true
}

// orphanSet is the unassignedFeedback slot keyed by remote file id.
type orphanSet struct {
	records []domain.Record
	dirty   bool
}

func newOrphanSet(records []domain.Record) *orphanSet {
	return &orphanSet{records: records}
}

func (o *orphanSet) index(id string) int {
	for i, r := range o.records {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

func (o *orphanSet) get(id string) (domain.UnassignedFeedback, bool) {
	var item domain.UnassignedFeedback
	i := o.index(id)
	if i < 0 {
		return item, false
	}
	if err := domain.DecodeRecord(o.records[i], &item); err != nil {
		return item, false
	}
	if item.RemoteFileID == "" {
		item.RemoteFileID = id
	}
	return item, true
}

// add records a new orphan; a file already recorded is not duplicated.
func (o *orphanSet) add(fileID string, sub domain.InboxSubmission, now time.Time) bool {
	if o.index(fileID) >= 0 {
		return false
	}
	r, err := domain.EncodeRecord(domain.NewUnassignedFeedback(fileID, sub, now))
	if err != nil {
		return false
	}
	o.records = append(o.records, r)
	o.dirty = true
	return true
}

func (o *orphanSet) remove(id string) {
	if i := o.index(id); i >= 0 {
		o.records = append(o.records[:i], o.records[i+1:]...)
		o.dirty = true
	}
}
