package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"go.uber.org/zap"
)

const jsonContentType = "application/json"

// AzureBlobBackend keeps vault files in one blob container. Folders are
// virtual: a folder exists while some blob carries its "<name>/" prefix.
// Authentication comes from the connection string, not the bearer token.
type AzureBlobBackend struct {
	client        *azblob.Client
	containerName string
	logger        *zap.Logger
}

// NewAzureBlobBackend creates the backend and ensures the container exists
func NewAzureBlobBackend(connectionString, containerName string, logger *zap.Logger) (*AzureBlobBackend, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	_, err = client.CreateContainer(context.Background(), containerName, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	logger.Info("Azure Blob vault initialized", zap.String("container", containerName))

	return &AzureBlobBackend{
		client:        client,
		containerName: containerName,
		logger:        logger,
	}, nil
}

func (s *AzureBlobBackend) listPrefix(ctx context.Context, prefix string) ([]FileInfo, error) {
	pager := s.client.NewListBlobsFlatPager(s.containerName, &azblob.ListBlobsFlatOptions{Prefix: &prefix})

	var files []FileInfo
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, mapBlobError(err)
		}
		for _, item := range resp.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			info := FileInfo{ID: *item.Name, Name: (*item.Name)[strings.LastIndex(*item.Name, "/")+1:]}
			if item.Properties != nil && item.Properties.LastModified != nil {
				info.ModifiedAt = *item.Properties.LastModified
			}
			files = append(files, info)
		}
	}
	return files, nil
}

func (s *AzureBlobBackend) Find(ctx context.Context, _ string, name, parentID string, folder bool) ([]FileInfo, error) {
	id := joinID(parentID, name)
	if folder {
		children, err := s.listPrefix(ctx, id+"/")
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			return nil, nil
		}
		return []FileInfo{{ID: id, Name: name, Folder: true}}, nil
	}

	candidates, err := s.listPrefix(ctx, id)
	if err != nil {
		return nil, err
	}
	var matches []FileInfo
	for _, c := range candidates {
		if c.ID == id {
			matches = append(matches, c)
		}
	}
	return matches, nil
}

func (s *AzureBlobBackend) List(ctx context.Context, _ string, parentID string) ([]FileInfo, error) {
	prefix := ""
	if parentID != "" {
		prefix = parentID + "/"
	}
	all, err := s.listPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	direct := make([]FileInfo, 0, len(all))
	for _, f := range all {
		if !strings.Contains(strings.TrimPrefix(f.ID, prefix), "/") {
			direct = append(direct, f)
		}
	}
	return direct, nil
}

func (s *AzureBlobBackend) upload(ctx context.Context, id string, data []byte) error {
	contentType := jsonContentType
	_, err := s.client.UploadBuffer(ctx, s.containerName, id, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob: %w", mapBlobError(err))
	}
	return nil
}

func (s *AzureBlobBackend) Create(ctx context.Context, _ string, name, parentID string, data []byte) (FileInfo, error) {
	id := joinID(parentID, name)
	if err := s.upload(ctx, id, data); err != nil {
		return FileInfo{}, err
	}
	s.logger.Info("Blob created",
		zap.String("blobName", id),
		zap.String("container", s.containerName),
		zap.Int("size", len(data)),
	)
	return FileInfo{ID: id, Name: name}, nil
}

func (s *AzureBlobBackend) Read(ctx context.Context, _ string, id string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, s.containerName, id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob: %w", mapBlobError(err))
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *AzureBlobBackend) Overwrite(ctx context.Context, _ string, id string, data []byte) error {
	return s.upload(ctx, id, data)
}

func (s *AzureBlobBackend) Delete(ctx context.Context, _ string, id string) error {
	_, err := s.client.DeleteBlob(ctx, s.containerName, id, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			s.logger.Debug("Blob already deleted or not found", zap.String("blobName", id))
			return nil
		}
		return fmt.Errorf("failed to delete blob: %w", mapBlobError(err))
	}
	return nil
}

func (s *AzureBlobBackend) Ping(ctx context.Context, _ string) error {
	_, err := s.client.ServiceClient().NewContainerClient(s.containerName).GetProperties(ctx, nil)
	if err != nil {
		return fmt.Errorf("container unavailable: %w", mapBlobError(err))
	}
	return nil
}

func mapBlobError(err error) error {
	switch {
	case bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case bloberror.HasCode(err, bloberror.AuthenticationFailed, bloberror.AuthorizationFailure):
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return err
}
