// Package vault talks to the shared master document and the feedback inbox
// through a storage.Backend. Every failure leaves this package as an *Error
// so callers can report it without unwinding.
package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aeworks/ops-api/internal/storage"
	"go.uber.org/zap"
)

// ErrAuthRequired matches failures caused by a missing or rejected token.
var ErrAuthRequired = errors.New("cloud authorization required")

// Error is a failed vault operation.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrAuthRequired) see through backend auth failures.
func (e *Error) Is(target error) bool {
	return target == ErrAuthRequired && errors.Is(e.Err, storage.ErrUnauthorized)
}

// Message is the human-readable form shown to operators.
func (e *Error) Message() string {
	if e.Is(ErrAuthRequired) {
		return "Cloud authorization expired or missing. Please reconnect the cloud account."
	}
	return fmt.Sprintf("Cloud %s failed: %v", e.Op, e.Err)
}

// FileHandle identifies a remote file.
type FileHandle struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Options configures a Client
type Options struct {
	MasterDocumentName string
	InboxFolderName    string
	// RequestTimeout bounds each backend call; zero disables it
	RequestTimeout time.Duration
}

// Client is the remote vault client
type Client struct {
	backend storage.Backend
	opts    Options
	logger  *zap.Logger
}

// NewClient creates a new vault Client
func NewClient(backend storage.Backend, opts Options, logger *zap.Logger) *Client {
	return &Client{backend: backend, opts: opts, logger: logger}
}

// MasterDocumentName returns the fixed document name searched for.
func (c *Client) MasterDocumentName() string {
	return c.opts.MasterDocumentName
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.opts.RequestTimeout)
}

func (c *Client) fail(op string, err error) error {
	c.logger.Warn("Vault operation failed", zap.String("op", op), zap.Error(err))
	return &Error{Op: op, Err: err}
}

// LocateMasterDocument searches the root for the master document by its exact
// name. Duplicates are not reconciled: the first search result is used.
func (c *Client) LocateMasterDocument(ctx context.Context, token string) (*FileHandle, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	files, err := c.backend.Find(ctx, token, c.opts.MasterDocumentName, "", false)
	if err != nil {
		return nil, c.fail("search", err)
	}
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > 1 {
		c.logger.Warn("Multiple master documents found, using the first",
			zap.String("name", c.opts.MasterDocumentName),
			zap.Int("count", len(files)),
			zap.String("fileId", files[0].ID),
		)
	}
	return &FileHandle{ID: files[0].ID, Name: files[0].Name}, nil
}

// CreateMasterDocument creates an empty-shell master document.
func (c *Client) CreateMasterDocument(ctx context.Context, token string) (*FileHandle, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	data, err := json.Marshal(NewDocument())
	if err != nil {
		return nil, c.fail("create", err)
	}
	f, err := c.backend.Create(ctx, token, c.opts.MasterDocumentName, "", data)
	if err != nil {
		return nil, c.fail("create", err)
	}
	c.logger.Info("Master document created", zap.String("fileId", f.ID))
	return &FileHandle{ID: f.ID, Name: f.Name}, nil
}

// DownloadDocument fetches and parses the master document.
func (c *Client) DownloadDocument(ctx context.Context, handle *FileHandle, token string) (*Document, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	data, err := c.backend.Read(ctx, token, handle.ID)
	if err != nil {
		return nil, c.fail("download", err)
	}
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, c.fail("download", err)
	}
	return doc, nil
}

// OverwriteDocument replaces the whole remote document. There is no
// concurrency check: the last overwrite to land wins.
func (c *Client) OverwriteDocument(ctx context.Context, handle *FileHandle, token string, doc *Document) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	data, err := json.Marshal(doc)
	if err != nil {
		return c.fail("upload", err)
	}
	if err := c.backend.Overwrite(ctx, token, handle.ID, data); err != nil {
		return c.fail("upload", err)
	}
	return nil
}

// LocateInboxFolder finds the feedback inbox. A missing folder is (nil, nil).
func (c *Client) LocateInboxFolder(ctx context.Context, token string) (*FileHandle, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	folders, err := c.backend.Find(ctx, token, c.opts.InboxFolderName, "", true)
	if err != nil {
		return nil, c.fail("inbox search", err)
	}
	if len(folders) == 0 {
		return nil, nil
	}
	return &FileHandle{ID: folders[0].ID, Name: folders[0].Name}, nil
}

// ListInbox lists the files directly inside folder.
func (c *Client) ListInbox(ctx context.Context, folder *FileHandle, token string) ([]FileHandle, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	files, err := c.backend.List(ctx, token, folder.ID)
	if err != nil {
		return nil, c.fail("inbox list", err)
	}
	out := make([]FileHandle, 0, len(files))
	for _, f := range files {
		out = append(out, FileHandle{ID: f.ID, Name: f.Name})
	}
	return out, nil
}

// DownloadInboxFile returns the raw body of one inbox file.
func (c *Client) DownloadInboxFile(ctx context.Context, file FileHandle, token string) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	data, err := c.backend.Read(ctx, token, file.ID)
	if err != nil {
		return nil, c.fail("inbox download", err)
	}
	return data, nil
}

// DeleteInboxFile removes a consumed inbox file.
func (c *Client) DeleteInboxFile(ctx context.Context, file FileHandle, token string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.backend.Delete(ctx, token, file.ID); err != nil {
		return c.fail("inbox delete", err)
	}
	return nil
}

// Ping checks that the vault is reachable with token.
func (c *Client) Ping(ctx context.Context, token string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.backend.Ping(ctx, token); err != nil {
		return &Error{Op: "ping", Err: err}
	}
	return nil
}

// Message renders any error for a result message.
func Message(err error) string {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Message()
	}
	return err.Error()
}

// IsNotFound reports whether err means the remote file no longer exists.
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
