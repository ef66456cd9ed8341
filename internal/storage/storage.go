package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/quotation-api/internal/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrValueNotFound is returned by ValueStore.Get when a scope has no stored value
var ErrValueNotFound = errors.New("value not found")

// ErrInvalidScope is returned for scope identifiers that cannot name a stored value
var ErrInvalidScope = errors.New("invalid scope")

var scopePattern = regexp.MustCompile(`^[A-Za-z0-9_.@-]{1,128}$`)

// ValidScope reports whether scope can be used as a backing value key
func ValidScope(scope string) bool {
	return scopePattern.MatchString(scope) && scope != "." && scope != ".."
}

// Storage defines the interface for uploaded assets (logos, product images)
type Storage interface {
	Upload(ctx context.Context, filename string, contentType string, data io.Reader) (string, int64, error)
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, storagePath string) error
}

// ValueStore holds one opaque text value per scope. Put replaces the whole value.
type ValueStore interface {
	Get(ctx context.Context, scope string) (string, error)
	Put(ctx context.Context, scope string, value string) error
	Scopes(ctx context.Context) ([]string, error)
}

// NewStorage creates the asset storage based on configuration.
// Database mode keeps workbooks in SQL and assets on the local filesystem.
func NewStorage(cfg *config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Mode {
	case "local", "database":
		return NewLocalStorage(filepath.Join(cfg.LocalBasePath, "assets"))
	case "cloud", "azure":
		if cfg.CloudConnectionString == "" {
			return nil, fmt.Errorf("cloud connection string required for azure storage")
		}
		return NewAzureBlobStorage(cfg.CloudConnectionString, cfg.AssetContainer, logger)
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", cfg.Mode)
	}
}

// NewValueStore creates the workbook backing store based on configuration.
// db is only used in database mode and may be nil otherwise.
func NewValueStore(cfg *config.StorageConfig, db *gorm.DB, logger *zap.Logger) (ValueStore, error) {
	switch cfg.Mode {
	case "local":
		return NewLocalValueStore(filepath.Join(cfg.LocalBasePath, "workbooks"))
	case "cloud", "azure":
		if cfg.CloudConnectionString == "" {
			return nil, fmt.Errorf("cloud connection string required for azure storage")
		}
		return NewAzureValueStore(cfg.CloudConnectionString, cfg.CloudContainer, logger)
	case "database":
		if db == nil {
			return nil, fmt.Errorf("database connection required for database storage")
		}
		return NewDatabaseValueStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", cfg.Mode)
	}
}

// LocalStorage implements Storage interface for local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Upload stores data under a generated path that keeps the original extension
func (s *LocalStorage) Upload(ctx context.Context, filename string, contentType string, data io.Reader) (string, int64, error) {
	fileID := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(filename))
	storagePath := filepath.ToSlash(filepath.Join(fileID[:2], fileID+ext))
	fullPath := filepath.Join(s.basePath, storagePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, data)
	if err != nil {
		os.Remove(fullPath)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}

	return storagePath, size, nil
}

// Download opens a stored asset
func (s *LocalStorage) Download(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(storagePath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s: %w", storagePath, ErrValueNotFound)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes a stored asset. Deleting a missing asset is not an error.
func (s *LocalStorage) Delete(ctx context.Context, storagePath string) error {
	fullPath, err := s.resolve(storagePath)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// resolve keeps storage paths inside the base directory
func (s *LocalStorage) resolve(storagePath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(storagePath))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid storage path: %s", storagePath)
	}
	return filepath.Join(s.basePath, clean), nil
}

// LocalValueStore keeps one file per scope in a directory
type LocalValueStore struct {
	dir string
}

const localValueExt = ".wb"

// NewLocalValueStore creates the directory if needed
func NewLocalValueStore(dir string) (*LocalValueStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workbook directory: %w", err)
	}
	return &LocalValueStore{dir: dir}, nil
}

func (s *LocalValueStore) path(scope string) (string, error) {
	if !ValidScope(scope) {
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	return filepath.Join(s.dir, scope+localValueExt), nil
}

// Get reads the value for scope
func (s *LocalValueStore) Get(ctx context.Context, scope string) (string, error) {
	path, err := s.path(scope)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrValueNotFound
		}
		return "", fmt.Errorf("failed to read value: %w", err)
	}
	return string(data), nil
}

// Put replaces the value for scope. The value is written to a temporary file
// and renamed so readers never observe a partial write.
func (s *LocalValueStore) Put(ctx context.Context, scope string, value string) error {
	path, err := s.path(scope)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, scope+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write value: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace value: %w", err)
	}
	return nil
}

// Scopes lists every scope with a stored value, sorted
func (s *LocalValueStore) Scopes(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list workbooks: %w", err)
	}
	scopes := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), localValueExt) {
			continue
		}
		scopes = append(scopes, strings.TrimSuffix(e.Name(), localValueExt))
	}
	sort.Strings(scopes)
	return scopes, nil
}
