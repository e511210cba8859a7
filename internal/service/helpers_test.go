package service_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aeworks/ops-api/internal/domain"
	"github.com/aeworks/ops-api/internal/events"
	"github.com/aeworks/ops-api/internal/service"
	"github.com/aeworks/ops-api/internal/storage"
	"github.com/aeworks/ops-api/internal/store"
	"github.com/aeworks/ops-api/internal/vault"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	masterName = "AEWorks_Master_DB.json"
	inboxName  = "AEWorks_Feedback_Inbox"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type runLog struct {
	runs []domain.SyncRun
}

func (r *runLog) Create(_ context.Context, run *domain.SyncRun) error {
	r.runs = append(r.runs, *run)
	return nil
}

type notifications struct {
	codes []string
}

func (n *notifications) NotifyFeedback(code string) {
	n.codes = append(n.codes, code)
}

// failingBackend rejects every search with err.
type failingBackend struct {
	*storage.LocalBackend
	err error
}

func (f *failingBackend) Find(context.Context, string, string, string, bool) ([]storage.FileInfo, error) {
	return nil, f.err
}

// laggingBackend never finds anything by name, like a search index that has
// not caught up, and counts created files.
type laggingBackend struct {
	*storage.LocalBackend
	mu      sync.Mutex
	creates int
}

func (l *laggingBackend) Find(context.Context, string, string, string, bool) ([]storage.FileInfo, error) {
	return nil, nil
}

func (l *laggingBackend) Create(ctx context.Context, token, name, parentID string, data []byte) (storage.FileInfo, error) {
	l.mu.Lock()
	l.creates++
	l.mu.Unlock()
	return l.LocalBackend.Create(ctx, token, name, parentID, data)
}

func (l *laggingBackend) created() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.creates
}

type fixture struct {
	ctx      context.Context
	clock    *testClock
	backend  *storage.LocalBackend
	bus      *events.Bus
	events   []string
	store    *store.LocalStore
	meta     *store.MetaStore
	inbox    *service.InboxService
	sync     *service.SyncService
	projects *service.ProjectService
	runs     *runLog
	notified *notifications
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend, err := storage.NewLocalBackend(t.TempDir())
	require.NoError(t, err)
	return newFixtureWithBackend(t, backend, backend)
}

func newFixtureWithBackend(t *testing.T, local *storage.LocalBackend, backend storage.Backend) *fixture {
	t.Helper()
	logger := zap.NewNop()

	f := &fixture{
		ctx:      context.Background(),
		clock:    &testClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
		backend:  local,
		bus:      events.NewBus(),
		runs:     &runLog{},
		notified: &notifications{},
	}
	f.bus.Subscribe(func(ev domain.ChangeEvent) { f.events = append(f.events, ev.Dataset) })

	slots := store.NewMemorySlots()
	f.store = store.NewLocalStore(slots, f.bus, logger).WithClock(f.clock.Now)
	f.meta = store.NewMetaStore(slots, domain.SystemMeta{}, logger)

	client := vault.NewClient(backend, vault.Options{MasterDocumentName: masterName, InboxFolderName: inboxName}, logger)
	f.inbox = service.NewInboxService(f.store, f.meta, client, "ops-test", logger).WithClock(f.clock.Now)
	f.sync = service.NewSyncService(f.store, f.meta, client, f.inbox, f.runs, f.bus, "ops-test", logger).
		WithClock(f.clock.Now).
		WithNotifier(f.notified)
	f.projects = service.NewProjectService(f.store, logger).WithClock(f.clock.Now)
	return f
}

func (f *fixture) saveLocal(t *testing.T, dataset string, records ...domain.Record) {
	t.Helper()
	require.NoError(t, f.store.Save(f.ctx, dataset, records))
}

func (f *fixture) writeRemote(t *testing.T, datasets map[string][]domain.Record) {
	t.Helper()
	doc := map[string]any{"_meta": map[string]any{"lastPush": "2024-01-01T00:00:00.000Z"}}
	for k, v := range datasets {
		doc[k] = v
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(f.backend.BasePath(), masterName), data, 0644))
}

func (f *fixture) readRemote(t *testing.T) map[string][]domain.Record {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.backend.BasePath(), masterName))
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	out := make(map[string][]domain.Record)
	for _, name := range domain.Datasets {
		var records []domain.Record
		if v, ok := raw[name]; ok {
			require.NoError(t, json.Unmarshal(v, &records))
		}
		out[name] = records
	}
	return out
}

func (f *fixture) remoteExists() bool {
	_, err := os.Stat(filepath.Join(f.backend.BasePath(), masterName))
	return err == nil
}

func (f *fixture) dropInbox(t *testing.T, name, body string) string {
	t.Helper()
	dir := filepath.Join(f.backend.BasePath(), inboxName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	return inboxName + "/" + name
}

func (f *fixture) inboxHas(name string) bool {
	_, err := os.Stat(filepath.Join(f.backend.BasePath(), inboxName, name))
	return err == nil
}

func (f *fixture) project(t *testing.T, code string) domain.Record {
	t.Helper()
	p, err := f.projects.Get(f.ctx, code)
	require.NoError(t, err)
	return p
}

func ts(t time.Time) string {
	return domain.FormatTimestamp(t)
}

func projectRecord(code, client string, updated time.Time) domain.Record {
	return domain.Record{
		"id":          "id-" + code,
		"projectCode": code,
		"name":        "Canopy",
		"clientName":  client,
		"status":      "35",
		"updatedAt":   ts(updated),
	}
}

func feedbackStatus(p domain.Record) string {
	return p.Object(domain.FieldTrackingData).String(domain.FieldFeedbackStatus)
}
