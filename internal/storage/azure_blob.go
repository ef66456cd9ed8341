package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newBlobClient(connectionString, containerName string, logger *zap.Logger) (*azblob.Client, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	_, err = client.CreateContainer(context.Background(), containerName, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	logger.Info("Azure Blob Storage initialized", zap.String("container", containerName))
	return client, nil
}

// AzureBlobStorage implements Storage interface for Azure Blob Storage
type AzureBlobStorage struct {
	client        *azblob.Client
	containerName string
	logger        *zap.Logger
}

// NewAzureBlobStorage creates a new Azure Blob Storage instance
func NewAzureBlobStorage(connectionString, containerName string, logger *zap.Logger) (*AzureBlobStorage, error) {
	client, err := newBlobClient(connectionString, containerName, logger)
	if err != nil {
		return nil, err
	}
	return &AzureBlobStorage{client: client, containerName: containerName, logger: logger}, nil
}

// Upload uploads an asset under a generated blob name
func (s *AzureBlobStorage) Upload(ctx context.Context, filename string, contentType string, data io.Reader) (string, int64, error) {
	blobName := uuid.New().String() + strings.ToLower(filepath.Ext(filename))

	reader := &countingReader{r: data}
	_, err := s.client.UploadStream(ctx, s.containerName, blobName, reader, &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to upload blob: %w", err)
	}

	s.logger.Info("Asset uploaded to Azure Blob Storage",
		zap.String("blobName", blobName),
		zap.String("contentType", contentType),
		zap.Int64("size", reader.count),
	)
	return blobName, reader.count, nil
}

// countingReader wraps an io.Reader and counts the number of bytes read
type countingReader struct {
	r     io.Reader
	count int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.count += int64(n)
	return n, err
}

// Download downloads an asset
func (s *AzureBlobStorage) Download(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	resp, err := s.client.DownloadStream(ctx, s.containerName, storagePath, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, fmt.Errorf("blob %s: %w", storagePath, ErrValueNotFound)
		}
		return nil, fmt.Errorf("failed to download blob: %w", err)
	}
	return resp.Body, nil
}

// Delete deletes an asset. Missing blobs are ignored.
func (s *AzureBlobStorage) Delete(ctx context.Context, storagePath string) error {
	_, err := s.client.DeleteBlob(ctx, s.containerName, storagePath, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// AzureValueStore keeps one blob per scope
type AzureValueStore struct {
	client        *azblob.Client
	containerName string
	logger        *zap.Logger
}

const blobValueSuffix = ".workbook"

// NewAzureValueStore creates the workbook container if needed
func NewAzureValueStore(connectionString, containerName string, logger *zap.Logger) (*AzureValueStore, error) {
	client, err := newBlobClient(connectionString, containerName, logger)
	if err != nil {
		return nil, err
	}
	return &AzureValueStore{client: client, containerName: containerName, logger: logger}, nil
}

// Get downloads the workbook value for scope
func (s *AzureValueStore) Get(ctx context.Context, scope string) (string, error) {
	if !ValidScope(scope) {
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	resp, err := s.client.DownloadStream(ctx, s.containerName, scope+blobValueSuffix, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return "", ErrValueNotFound
		}
		return "", fmt.Errorf("failed to download workbook: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read workbook: %w", err)
	}
	return string(data), nil
}

// Put overwrites the workbook blob in a single upload
func (s *AzureValueStore) Put(ctx context.Context, scope string, value string) error {
	if !ValidScope(scope) {
		return fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	contentType := "text/plain"
	_, err := s.client.UploadBuffer(ctx, s.containerName, scope+blobValueSuffix, []byte(value), &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("failed to upload workbook: %w", err)
	}
	s.logger.Debug("Workbook uploaded to Azure Blob Storage",
		zap.String("scope", scope),
		zap.Int("size", len(value)),
	)
	return nil
}

// Scopes lists every scope with a workbook blob
func (s *AzureValueStore) Scopes(ctx context.Context) ([]string, error) {
	var scopes []string
	pager := s.client.NewListBlobsFlatPager(s.containerName, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list workbooks: %w", err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil || !strings.HasSuffix(*item.Name, blobValueSuffix) {
				continue
			}
			scopes = append(scopes, strings.TrimSuffix(*item.Name, blobValueSuffix))
		}
	}
	return scopes, nil
}
