package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	driveFolderMimeType = "application/vnd.google-apps.folder"
	driveFileFields     = "files(id, name, mimeType, modifiedTime), nextPageToken"
)

// DriveBackend talks to Google Drive with the caller's OAuth access token.
// A service is built per call because the token is per call.
type DriveBackend struct {
	logger *zap.Logger
	// opts are appended to every service, e.g. a custom endpoint
	opts []option.ClientOption
}

// NewDriveBackend creates a new Drive backend
func NewDriveBackend(logger *zap.Logger, opts ...option.ClientOption) *DriveBackend {
	return &DriveBackend{logger: logger, opts: opts}
}

func (d *DriveBackend) service(ctx context.Context, token string) (*drive.Service, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, d.opts...)
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return srv, nil
}

// DriveQuery builds the search expression for an exact name inside parentID.
func DriveQuery(name, parentID string, folder bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "name = '%s' and trashed = false", escapeDriveLiteral(name))
	if folder {
		fmt.Fprintf(&b, " and mimeType = '%s'", driveFolderMimeType)
	} else {
		fmt.Fprintf(&b, " and mimeType != '%s'", driveFolderMimeType)
	}
	if parentID != "" {
		fmt.Fprintf(&b, " and '%s' in parents", escapeDriveLiteral(parentID))
	}
	return b.String()
}

func escapeDriveLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func (d *DriveBackend) search(ctx context.Context, token, query string) ([]FileInfo, error) {
	srv, err := d.service(ctx, token)
	if err != nil {
		return nil, err
	}

	var files []FileInfo
	pageToken := ""
	for {
		call := srv.Files.List().Q(query).Spaces("drive").Fields(driveFileFields).PageSize(100).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, mapDriveError(err)
		}
		for _, f := range resp.Files {
			files = append(files, driveInfo(f))
		}
		if resp.NextPageToken == "" {
			return files, nil
		}
		pageToken = resp.NextPageToken
	}
}

func driveInfo(f *drive.File) FileInfo {
	info := FileInfo{ID: f.Id, Name: f.Name, Folder: f.MimeType == driveFolderMimeType}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		info.ModifiedAt = t
	}
	return info
}

func (d *DriveBackend) Find(ctx context.Context, token, name, parentID string, folder bool) ([]FileInfo, error) {
	return d.search(ctx, token, DriveQuery(name, parentID, folder))
}

func (d *DriveBackend) List(ctx context.Context, token, parentID string) ([]FileInfo, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false and mimeType != '%s'", escapeDriveLiteral(parentID), driveFolderMimeType)
	return d.search(ctx, token, query)
}

func (d *DriveBackend) Create(ctx context.Context, token, name, parentID string, data []byte) (FileInfo, error) {
	srv, err := d.service(ctx, token)
	if err != nil {
		return FileInfo{}, err
	}
	meta := &drive.File{Name: name, MimeType: jsonContentType}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}
	f, err := srv.Files.Create(meta).
		Media(bytes.NewReader(data), googleapi.ContentType(jsonContentType)).
		Fields("id, name, mimeType, modifiedTime").
		Context(ctx).
		Do()
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to create drive file: %w", mapDriveError(err))
	}
	d.logger.Info("Drive file created", zap.String("fileId", f.Id), zap.String("name", f.Name))
	return driveInfo(f), nil
}

func (d *DriveBackend) Read(ctx context.Context, token, id string) ([]byte, error) {
	srv, err := d.service(ctx, token)
	if err != nil {
		return nil, err
	}
	resp, err := srv.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download drive file: %w", mapDriveError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read drive file: %w", err)
	}
	return data, nil
}

func (d *DriveBackend) Overwrite(ctx context.Context, token, id string, data []byte) error {
	srv, err := d.service(ctx, token)
	if err != nil {
		return err
	}
	_, err = srv.Files.Update(id, &drive.File{}).
		Media(bytes.NewReader(data), googleapi.ContentType(jsonContentType)).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to overwrite drive file: %w", mapDriveError(err))
	}
	return nil
}

func (d *DriveBackend) Delete(ctx context.Context, token, id string) error {
	srv, err := d.service(ctx, token)
	if err != nil {
		return err
	}
	if err := srv.Files.Delete(id).Context(ctx).Do(); err != nil {
		mapped := mapDriveError(err)
		if errors.Is(mapped, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete drive file: %w", mapped)
	}
	return nil
}

func (d *DriveBackend) Ping(ctx context.Context, token string) error {
	srv, err := d.service(ctx, token)
	if err != nil {
		return err
	}
	if _, err := srv.About.Get().Fields("user").Context(ctx).Do(); err != nil {
		return mapDriveError(err)
	}
	return nil
}

func mapDriveError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		}
	}
	return err
}
