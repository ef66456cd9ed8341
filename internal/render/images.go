package render

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/straye-as/quotation-api/internal/storage"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImageSource resolves image references found in a document
type ImageSource interface {
	Image(ctx context.Context, ref string) (image.Image, error)
}

// StorageImages decodes images from the asset storage
type StorageImages struct {
	storage storage.Storage
}

// NewStorageImages creates an ImageSource backed by asset storage
func NewStorageImages(s storage.Storage) *StorageImages {
	return &StorageImages{storage: s}
}

// Image downloads and decodes ref
func (s *StorageImages) Image(ctx context.Context, ref string) (image.Image, error) {
	reader, err := s.storage.Download(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	img, _, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", ref, err)
	}
	return img, nil
}
