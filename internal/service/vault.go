package service

import (
	"context"
	"time"

	"github.com/aeworks/ops-api/internal/domain"
	"github.com/aeworks/ops-api/internal/store"
	"github.com/aeworks/ops-api/internal/vault"
	"go.uber.org/zap"
)

// Vault is the remote side of synchronization. *vault.Client implements it.
type Vault interface {
	LocateMasterDocument(ctx context.Context, token string) (*vault.FileHandle, error)
	CreateMasterDocument(ctx context.Context, token string) (*vault.FileHandle, error)
	DownloadDocument(ctx context.Context, handle *vault.FileHandle, token string) (*vault.Document, error)
	OverwriteDocument(ctx context.Context, handle *vault.FileHandle, token string, doc *vault.Document) error
	MasterDocumentName() string

	LocateInboxFolder(ctx context.Context, token string) (*vault.FileHandle, error)
	ListInbox(ctx context.Context, folder *vault.FileHandle, token string) ([]vault.FileHandle, error)
	DownloadInboxFile(ctx context.Context, file vault.FileHandle, token string) ([]byte, error)
	DeleteInboxFile(ctx context.Context, file vault.FileHandle, token string) error
}

// resolveToken prefers an explicit token over the stored one.
func resolveToken(ctx context.Context, meta *store.MetaStore, token string) string {
	if token != "" {
		return token
	}
	return meta.Get(ctx).AccessToken
}

// pusher writes the full local snapshot over the master document.
type pusher struct {
	vault Vault
	store *store.LocalStore
	meta  *store.MetaStore
	name  string
	now   func() time.Time
}

// document fills doc (or a new shell) with every local dataset.
func (p *pusher) document(ctx context.Context, doc *vault.Document) *vault.Document {
	if doc == nil {
		doc = vault.NewDocument()
	}
	for name, records := range p.store.Snapshot(ctx) {
		doc.Datasets[name] = records
	}
	pushedBy := p.meta.Get(ctx).AccountEmail
	if pushedBy == "" {
		pushedBy = p.name
	}
	doc.Meta = vault.DocumentMeta{LastPush: domain.FormatTimestamp(p.now()), PushedBy: pushedBy}
	return doc
}

// stored returns a handle on the master document id remembered in
// SystemMeta, nil when none is known.
func (p *pusher) stored(ctx context.Context) *vault.FileHandle {
	if id := p.meta.Get(ctx).DriveFileID; id != "" {
		return &vault.FileHandle{ID: id, Name: p.vault.MasterDocumentName()}
	}
	return nil
}

// pushKnown overwrites the remembered master document with the local
// snapshot. An unknown or vanished id falls back to search, then creation.
func (p *pusher) pushKnown(ctx context.Context, token string, log *zap.Logger) (created bool, err error) {
	if handle := p.stored(ctx); handle != nil {
		err := p.push(ctx, handle, token, nil)
		if err == nil || !vault.IsNotFound(err) {
			return false, err
		}
		log.Info("Stored master document id is stale, searching", zap.String("fileId", handle.ID))
	}

	handle, created, err := p.target(ctx, token)
	if err != nil {
		return false, err
	}
	return created, p.push(ctx, handle, token, nil)
}

// target returns the master document handle, creating the document when the
// search finds none. created reports the latter.
func (p *pusher) target(ctx context.Context, token string) (handle *vault.FileHandle, created bool, err error) {
	handle, err = p.vault.LocateMasterDocument(ctx, token)
	if err != nil {
		return nil, false, err
	}
	if handle != nil {
		return handle, false, nil
	}
	handle, err = p.vault.CreateMasterDocument(ctx, token)
	if err != nil {
		return nil, false, err
	}
	return handle, true, nil
}

// push overwrites handle with the local snapshot and records the sync time.
func (p *pusher) push(ctx context.Context, handle *vault.FileHandle, token string, doc *vault.Document) error {
	if err := p.vault.OverwriteDocument(ctx, handle, token, p.document(ctx, doc)); err != nil {
		return err
	}
	return p.remember(ctx, handle)
}

func (p *pusher) remember(ctx context.Context, handle *vault.FileHandle) error {
	_, err := p.meta.Update(ctx, func(m *domain.SystemMeta) {
		m.DriveFileID = handle.ID
		m.LastSync = domain.FormatTimestamp(p.now())
	})
	return err
}
