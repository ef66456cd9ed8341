package service

import "errors"

// Common service errors
var (
	// ErrEmptyUpload is returned when an upload carries no data
	ErrEmptyUpload = errors.New("empty upload")

	// ErrUnsupportedAsset is returned for uploads that are not a supported image type
	ErrUnsupportedAsset = errors.New("unsupported asset type")
)
