package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aeworks/ops-api/internal/auth"
	"github.com/aeworks/ops-api/internal/config"
	"github.com/aeworks/ops-api/internal/domain"
	"github.com/aeworks/ops-api/internal/events"
	"github.com/aeworks/ops-api/internal/http/handler"
	"github.com/aeworks/ops-api/internal/http/middleware"
	"github.com/aeworks/ops-api/internal/http/router"
	"github.com/aeworks/ops-api/internal/service"
	"github.com/aeworks/ops-api/internal/storage"
	"github.com/aeworks/ops-api/internal/store"
	"github.com/aeworks/ops-api/internal/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRuns struct {
	runs []domain.SyncRun
	kind string
}

func (f *fakeRuns) Create(_ context.Context, run *domain.SyncRun) error {
	f.runs = append(f.runs, *run)
	return nil
}

func (f *fakeRuns) ListRecent(_ context.Context, kind string, _ int) ([]domain.SyncRun, error) {
	f.kind = kind
	return f.runs, nil
}

type server struct {
	t       *testing.T
	handler http.Handler
	apiKey  string
	runs    *fakeRuns
}

func newServer(t *testing.T, apiKey string, checks map[string]router.HealthCheck) *server {
	t.Helper()
	log := zap.NewNop()

	cfg := &config.Config{
		App:       config.AppConfig{Name: "ops-test", Environment: "test"},
		ApiKey:    config.ApiKeyConfig{Value: apiKey},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}

	backend, err := storage.NewLocalBackend(t.TempDir())
	require.NoError(t, err)

	slots := store.NewMemorySlots()
	bus := events.NewBus()
	localStore := store.NewLocalStore(slots, bus, log)
	meta := store.NewMetaStore(slots, domain.SystemMeta{}, log)
	client := vault.NewClient(backend, vault.Options{
		MasterDocumentName: "AEWorks_Master_DB.json",
		InboxFolderName:    "AEWorks_Feedback_Inbox",
	}, log)
	runs := &fakeRuns{}

	projects := service.NewProjectService(localStore, log)
	costingService := service.NewCostingService(localStore, projects, log)
	inbox := service.NewInboxService(localStore, meta, client, cfg.App.Name, log)
	syncService := service.NewSyncService(localStore, meta, client, inbox, runs, bus, cfg.App.Name, log)

	rt := router.NewRouter(cfg, log, auth.NewMiddleware(cfg, log), middleware.NewRateLimiter(&cfg.RateLimit, log), checks, router.Handlers{
		Dataset:  handler.NewDatasetHandler(service.NewDatasetService(localStore, log), log),
		Project:  handler.NewProjectHandler(projects, costingService, log),
		Sync:     handler.NewSyncHandler(syncService, runs, log),
		System:   handler.NewSystemHandler(service.NewSystemService(meta, log), log),
		Feedback: handler.NewFeedbackHandler(inbox, log),
	})

	return &server{t: t, handler: rt.Setup(), apiKey: apiKey, runs: runs}
}

func (s *server) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(s.t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("x-api-key", s.apiKey)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newServer(t, "", map[string]router.HealthCheck{
		"database": func(*http.Request) error { return nil },
		"vault":    func(*http.Request) error { return errors.New("offline") },
	})

	rec := s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = s.do(http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "unhealthy", body["status"])
}

func TestAPIKeyRequired(t *testing.T) {
	s := newServer(t, "secret", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/projects", nil).Code)
}

func TestProjects(t *testing.T) {
	s := newServer(t, "", nil)

	rec := s.do(http.MethodPost, "/api/v1/projects", domain.CreateProjectRequest{Name: "Jane Doe", ClientName: "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[domain.Project](t, rec)
	require.NotEmpty(t, created.ProjectCode)
	assert.Equal(t, "/api/v1/projects/"+created.ProjectCode, rec.Header().Get("Location"))
	assert.Equal(t, domain.StatusEnquiry, created.Status)

	rec = s.do(http.MethodGet, "/api/v1/projects/"+created.ProjectCode, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/projects", nil)
	assert.Len(t, decode[[]domain.Project](t, rec), 1)

	t.Run("unknown code", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/v1/projects/AEP-ZZ-9", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, domain.ErrorTypeNotFound, decode[domain.APIError](t, rec).Type)
	})

	t.Run("validation", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/projects", domain.CreateProjectRequest{ClientName: "Acme"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		apiErr := decode[domain.APIError](t, rec)
		assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
		assert.Contains(t, apiErr.Errors, "name")
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/projects", "{")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("closing needs closeout", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/api/v1/projects/"+created.ProjectCode+"/status", map[string]string{"status": "100"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("verify before received", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/projects/"+created.ProjectCode+"/feedback/verify", domain.VerifyFeedbackRequest{VerifiedBy: "ops"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("feedback request and tracking", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/projects/"+created.ProjectCode+"/feedback/request", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		requested := decode[domain.Project](t, rec)
		assert.Equal(t, domain.FeedbackRequested, requested.FeedbackState())

		rec = s.do(http.MethodPut, "/api/v1/projects/"+created.ProjectCode+"/tracking", map[string]bool{"qcSignedOff": true})
		require.Equal(t, http.StatusOK, rec.Code)
		p := decode[domain.Project](t, rec)
		require.NotNil(t, p.TrackingData)
		assert.True(t, p.TrackingData.QCSignedOff)
	})

	t.Run("cost", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/v1/projects/"+created.ProjectCode+"/cost", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"jobs"`)
	})

	t.Run("generate code", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/projects/generate-code", domain.GenerateCodeRequest{Name: "Jane Doe"})
		require.Equal(t, http.StatusOK, rec.Code)
		code := decode[domain.GenerateCodeResponse](t, rec).ProjectCode
		assert.NotEqual(t, created.ProjectCode, code)
	})
}

func TestDatasets(t *testing.T) {
	s := newServer(t, "", nil)

	records := []map[string]interface{}{{"name": "RHS 50x50x3", "rate": 180}}
	rec := s.do(http.MethodPut, "/api/v1/datasets/framingMaterials", records)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored := decode[[]domain.Record](t, s.do(http.MethodGet, "/api/v1/datasets/framingMaterials", nil))
	require.Len(t, stored, 1)
	assert.NotEmpty(t, stored[0].ID())

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/datasets/systemMeta", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/v1/datasets/nope", records).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/api/v1/datasets/clients", `{"not":"an array"}`).Code)

	t.Run("costing preview uses stored catalog", func(t *testing.T) {
		req := map[string]interface{}{
			"project": map[string]interface{}{
				"projectCode": "AEP-T-1.01",
				"jobs": []map[string]interface{}{{
					"id":             "j1",
					"name":           "Main",
					"framingTakeOff": []map[string]interface{}{{"material": "RHS 50x50x3", "length": 1, "qty": 1}},
				}},
			},
		}
		rec := s.do(http.MethodPost, "/api/v1/costing/preview", req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"matched":true`)
	})
}

func TestLogo(t *testing.T) {
	s := newServer(t, "", nil)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/api/v1/logo", domain.SaveLogoRequest{DataURL: "http://x"}).Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPut, "/api/v1/logo", domain.SaveLogoRequest{DataURL: "data:image/png;base64,AAAA"}).Code)

	got := decode[domain.SaveLogoRequest](t, s.do(http.MethodGet, "/api/v1/logo", nil))
	assert.Equal(t, "data:image/png;base64,AAAA", got.DataURL)
}

func TestSync(t *testing.T) {
	s := newServer(t, "", nil)

	t.Run("no token", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/sync", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[domain.SyncResult](t, rec)
		assert.False(t, res.Success)
		assert.True(t, res.AuthRequired)
	})

	t.Run("header token creates master", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/sync", nil, auth.VaultTokenHeader, "tok")
		res := decode[domain.SyncResult](t, rec)
		assert.True(t, res.Success, res.Message)
		assert.True(t, res.Created)
	})

	t.Run("body token and visibility trigger", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/sync?trigger=visibility", domain.SyncRequest{Token: "tok"})
		res := decode[domain.SyncResult](t, rec)
		assert.True(t, res.Success, res.Message)
		assert.Equal(t, domain.TriggerVisibility, s.runs.runs[len(s.runs.runs)-1].Source)
	})

	t.Run("internal triggers rejected", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/sync?trigger=timer", nil).Code)
	})

	t.Run("push and inbox", func(t *testing.T) {
		res := decode[domain.SyncResult](t, s.do(http.MethodPost, "/api/v1/sync/push", nil, "Authorization", "Bearer tok"))
		assert.True(t, res.Success, res.Message)

		inbox := decode[domain.InboxResult](t, s.do(http.MethodPost, "/api/v1/sync/inbox", nil, auth.VaultTokenHeader, "tok"))
		assert.True(t, inbox.Success)
		assert.Zero(t, inbox.Count)
	})

	t.Run("runs", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/v1/sync/runs?kind=push", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "push", s.runs.kind)
		assert.NotEmpty(t, decode[[]domain.SyncRun](t, rec))
	})
}

func TestSystem(t *testing.T) {
	s := newServer(t, "", nil)

	assert.False(t, decode[domain.SystemMetaView](t, s.do(http.MethodGet, "/api/v1/system/meta", nil)).Connected)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/system/connect", domain.ConnectRequest{}).Code)

	rec := s.do(http.MethodPost, "/api/v1/system/connect", domain.ConnectRequest{AccessToken: "ya29.secret", Email: "ops@aeworks.example"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "ya29.secret")
	view := decode[domain.SystemMetaView](t, rec)
	assert.True(t, view.Connected)
	assert.Equal(t, "ops@aeworks.example", view.AccountEmail)

	// the stored token now drives syncs
	res := decode[domain.SyncResult](t, s.do(http.MethodPost, "/api/v1/sync", nil))
	assert.True(t, res.Success, res.Message)

	view = decode[domain.SystemMetaView](t, s.do(http.MethodPost, "/api/v1/system/disconnect", nil))
	assert.False(t, view.Connected)
	assert.NotEmpty(t, view.DriveFileID)
}

func TestUnassignedFeedback(t *testing.T) {
	s := newServer(t, "", nil)

	rec := s.do(http.MethodGet, "/api/v1/feedback/unassigned", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.UnassignedFeedback](t, rec))

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodDelete, "/api/v1/feedback/unassigned/x", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/v1/feedback/unassigned/AEWorks_Feedback_Inbox%2Fx.json", nil, auth.VaultTokenHeader, "tok").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/v1/feedback/unassigned/x/link", domain.LinkFeedbackRequest{ProjectCode: "AEP-X-1", Token: "tok"}).Code)
}
