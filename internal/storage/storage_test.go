package storage

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/aeworks/ops-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

func TestLocalBackend_Lifecycle(t *testing.T) {
	ctx := context.Background()
	backend, err := NewLocalBackend(t.TempDir())
	require.NoError(t, err)

	found, err := backend.Find(ctx, "", "master.json", "", false)
	require.NoError(t, err)
	assert.Empty(t, found)

	created, err := backend.Create(ctx, "", "master.json", "", []byte(`{"projects":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "master.json", created.ID)

	found, err = backend.Find(ctx, "", "master.json", "", false)
	require.NoError(t, err)
	require.Len(t, found, 1)

	// a file is not a folder
	folders, err := backend.Find(ctx, "", "master.json", "", true)
	require.NoError(t, err)
	assert.Empty(t, folders)

	require.NoError(t, backend.Overwrite(ctx, "", created.ID, []byte(`{"projects":[{"id":"1"}]}`)))
	data, err := backend.Read(ctx, "", created.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"projects":[{"id":"1"}]}`, string(data))

	require.NoError(t, backend.Delete(ctx, "", created.ID))
	require.NoError(t, backend.Delete(ctx, "", created.ID), "deleting twice is fine")

	_, err = backend.Read(ctx, "", created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, backend.Overwrite(ctx, "", created.ID, nil), ErrNotFound)
}

func TestLocalBackend_FolderListing(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	backend, err := NewLocalBackend(base)
	require.NoError(t, err)

	inbox := filepath.Join(base, "Inbox")
	require.NoError(t, os.MkdirAll(filepath.Join(inbox, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "b.json"), []byte(`{}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "a.json"), []byte(`{}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, ".tmp-123"), []byte(`{}`), 0644))

	folders, err := backend.Find(ctx, "", "Inbox", "", true)
	require.NoError(t, err)
	require.Len(t, folders, 1)

	files, err := backend.List(ctx, "", folders[0].ID)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "Inbox/a.json", files[0].ID)
	assert.Equal(t, "b.json", files[1].Name)

	_, err = backend.List(ctx, "", "Missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalBackend_RejectsEscapingIDs(t *testing.T) {
	backend, err := NewLocalBackend(t.TempDir())
	require.NoError(t, err)

	data, err := backend.Read(context.Background(), "", "../../etc/passwd")
	// the id is clamped inside the base directory
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, data)
	assert.NoError(t, backend.Ping(context.Background(), ""))
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.VaultConfig
		wantErr bool
	}{
		{name: "local", cfg: config.VaultConfig{Backend: "local", LocalBasePath: t.TempDir()}},
		{name: "drive", cfg: config.VaultConfig{Backend: "drive"}},
		{name: "azure without connection string", cfg: config.VaultConfig{Backend: "azure"}, wantErr: true},
		{name: "unknown", cfg: config.VaultConfig{Backend: "ftp"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBackend(&tt.cfg, zap.NewNop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, b)
		})
	}
}

func TestDriveQuery(t *testing.T) {
	assert.Equal(t,
		"name = 'AEWorks_Master_DB.json' and trashed = false and mimeType != 'application/vnd.google-apps.folder'",
		DriveQuery("AEWorks_Master_DB.json", "", false))
	assert.Equal(t,
		`name = 'O\'Brien' and trashed = false and mimeType = 'application/vnd.google-apps.folder' and 'root' in parents`,
		DriveQuery("O'Brien", "root", true))
}

func TestDriveBackend_RequiresToken(t *testing.T) {
	d := NewDriveBackend(zap.NewNop())
	_, err := d.Find(context.Background(), "", "x", "", false)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, d.Ping(context.Background(), ""), ErrUnauthorized)
}

func TestMapDriveError(t *testing.T) {
	assert.ErrorIs(t, mapDriveError(&googleapi.Error{Code: http.StatusUnauthorized}), ErrUnauthorized)
	assert.ErrorIs(t, mapDriveError(&googleapi.Error{Code: http.StatusNotFound}), ErrNotFound)
	plain := errors.New("boom")
	assert.Equal(t, plain, mapDriveError(plain))
}
