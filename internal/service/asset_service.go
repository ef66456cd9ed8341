package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/mapper"
	"github.com/straye-as/quotation-api/internal/storage"
	"go.uber.org/zap"
)

// MaxAssetSize caps the size of an uploaded logo or product image
const MaxAssetSize = 10 << 20

// assetTypes are the image types the renderer can decode, keyed by content type
var assetTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/bmp":  ".bmp",
	"image/webp": ".webp",
}

// AssetService stores logos and product images referenced from the workbook
type AssetService struct {
	storage storage.Storage
	logger  *zap.Logger
}

// NewAssetService creates a new AssetService
func NewAssetService(storage storage.Storage, logger *zap.Logger) *AssetService {
	return &AssetService{
		storage: storage,
		logger:  logger,
	}
}

// Upload stores an image and returns the reference to put on a company or product
func (s *AssetService) Upload(ctx context.Context, filename string, data io.Reader) (*domain.AssetDTO, error) {
	content, err := io.ReadAll(io.LimitReader(data, MaxAssetSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(content) == 0 {
		return nil, ErrEmptyUpload
	}
	if len(content) > MaxAssetSize {
		return nil, domain.NewFieldError("file", fmt.Sprintf("must be at most %d bytes", MaxAssetSize))
	}

	contentType := http.DetectContentType(content)
	ext, ok := assetTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAsset, contentType)
	}
	if e := strings.ToLower(path.Ext(filename)); e != "" && mime.TypeByExtension(e) == contentType {
		ext = e
	}

	reference, size, err := s.storage.Upload(ctx, strings.TrimSuffix(path.Base(filename), path.Ext(filename))+ext, contentType, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to store asset: %w", err)
	}

	s.logger.Info("asset uploaded",
		zap.String("reference", reference),
		zap.String("contentType", contentType),
		zap.Int64("size", size))

	dto := mapper.ToAssetDTO(reference, filename, contentType, size)
	return &dto, nil
}

// Download opens a stored asset and reports its content type
func (s *AssetService) Download(ctx context.Context, reference string) (io.ReadCloser, string, error) {
	if !validReference(reference) {
		return nil, "", &domain.NotFoundError{Entity: "Asset", ID: reference}
	}
	rc, err := s.storage.Download(ctx, reference)
	if err != nil {
		if errors.Is(err, storage.ErrValueNotFound) {
			return nil, "", &domain.NotFoundError{Entity: "Asset", ID: reference}
		}
		return nil, "", fmt.Errorf("failed to download asset: %w", err)
	}
	contentType := mime.TypeByExtension(path.Ext(reference))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return rc, contentType, nil
}

// Delete removes a stored asset. References left in the workbook are not touched.
func (s *AssetService) Delete(ctx context.Context, reference string) error {
	if !validReference(reference) {
		return &domain.NotFoundError{Entity: "Asset", ID: reference}
	}
	if err := s.storage.Delete(ctx, reference); err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}

func validReference(reference string) bool {
	if reference == "" || strings.HasPrefix(reference, "/") {
		return false
	}
	for _, part := range strings.Split(reference, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
