package storage_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/straye-as/quotation-api/internal/config"
	"github.com/straye-as/quotation-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestStorageInterfaceCompliance(t *testing.T) {
	var _ storage.Storage = (*storage.LocalStorage)(nil)
	var _ storage.Storage = (*storage.AzureBlobStorage)(nil)
	var _ storage.ValueStore = (*storage.LocalValueStore)(nil)
	var _ storage.ValueStore = (*storage.AzureValueStore)(nil)
	var _ storage.ValueStore = (*storage.DatabaseValueStore)(nil)
}

// ============================================================================
// Asset storage
// ============================================================================

func TestLocalStorage_UploadDownloadRoundtrip(t *testing.T) {
	ls, err := storage.NewLocalStorage(filepath.Join(t.TempDir(), "assets"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		filename string
		content  []byte
	}{
		{"png logo", "logo.PNG", []byte{0x89, 'P', 'N', 'G'}},
		{"jpeg photo", "photo.jpg", []byte{0xFF, 0xD8, 0xFF, 0xE0}},
		{"empty file", "empty.png", []byte{}},
		{"large file", "big.png", bytes.Repeat([]byte("L"), 100*1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, size, err := ls.Upload(context.Background(), tt.filename, "image/png", bytes.NewReader(tt.content))
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.content)), size)
			assert.Equal(t, strings.ToLower(filepath.Ext(tt.filename)), filepath.Ext(path))

			reader, err := ls.Download(context.Background(), path)
			require.NoError(t, err)
			defer reader.Close()

			downloaded, err := io.ReadAll(reader)
			require.NoError(t, err)
			assert.Equal(t, tt.content, downloaded)
		})
	}
}

func TestLocalStorage_Upload_LowercasesExtension(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	path, _, err := ls.Upload(context.Background(), "LOGO.PNG", "image/png", bytes.NewReader([]byte("x")))
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(path))
}

func TestLocalStorage_Download_NotFound(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	reader, err := ls.Download(context.Background(), "ab/missing.png")
	assert.ErrorIs(t, err, storage.ErrValueNotFound)
	assert.Nil(t, reader)
}

func TestLocalStorage_RejectsEscapingPaths(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"../secret", "/etc/passwd", "."} {
		_, err := ls.Download(context.Background(), p)
		assert.Error(t, err, p)
	}
}

func TestLocalStorage_Delete_Idempotent(t *testing.T) {
	dir := t.TempDir()
	ls, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	path, _, err := ls.Upload(context.Background(), "delete-me.png", "image/png", bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	require.NoError(t, ls.Delete(context.Background(), path))
	_, err = os.Stat(filepath.Join(dir, path))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ls.Delete(context.Background(), path))
}

// ============================================================================
// Value stores
// ============================================================================

func valueStores(t *testing.T) map[string]storage.ValueStore {
	local, err := storage.NewLocalValueStore(filepath.Join(t.TempDir(), "workbooks"))
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "workbooks.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&storage.WorkbookRecord{}))

	return map[string]storage.ValueStore{
		"local":    local,
		"database": storage.NewDatabaseValueStore(db),
	}
}

func TestValueStore_GetPut(t *testing.T) {
	for name, store := range valueStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "acme")
			assert.ErrorIs(t, err, storage.ErrValueNotFound)

			require.NoError(t, store.Put(ctx, "acme", "first"))
			value, err := store.Get(ctx, "acme")
			require.NoError(t, err)
			assert.Equal(t, "first", value)

			require.NoError(t, store.Put(ctx, "acme", "second"))
			value, err = store.Get(ctx, "acme")
			require.NoError(t, err)
			assert.Equal(t, "second", value)

			require.NoError(t, store.Put(ctx, "beta", "other"))
			scopes, err := store.Scopes(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"acme", "beta"}, scopes)
		})
	}
}

func TestValueStore_InvalidScope(t *testing.T) {
	for name, store := range valueStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, scope := range []string{"", "../etc", "a/b", ".."} {
				assert.ErrorIs(t, store.Put(context.Background(), scope, "x"), storage.ErrInvalidScope, scope)
				_, err := store.Get(context.Background(), scope)
				assert.ErrorIs(t, err, storage.ErrInvalidScope, scope)
			}
		})
	}
}

func TestValidScope(t *testing.T) {
	assert.True(t, storage.ValidScope("user@example.com"))
	assert.True(t, storage.ValidScope("tenant_42.prod-a"))
	assert.False(t, storage.ValidScope(""))
	assert.False(t, storage.ValidScope("with space"))
	assert.False(t, storage.ValidScope("a/b"))
	assert.False(t, storage.ValidScope(".."))
}

// ============================================================================
// Factories
// ============================================================================

func TestNewValueStore(t *testing.T) {
	base := t.TempDir()

	store, err := storage.NewValueStore(&config.StorageConfig{Mode: "local", LocalBasePath: base}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalValueStore{}, store)

	_, err = storage.NewValueStore(&config.StorageConfig{Mode: "database"}, nil, zap.NewNop())
	assert.Error(t, err)

	_, err = storage.NewValueStore(&config.StorageConfig{Mode: "azure"}, nil, zap.NewNop())
	assert.Error(t, err)

	_, err = storage.NewValueStore(&config.StorageConfig{Mode: "ftp"}, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestNewStorage(t *testing.T) {
	base := t.TempDir()

	assets, err := storage.NewStorage(&config.StorageConfig{Mode: "database", LocalBasePath: base}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStorage{}, assets)

	info, err := os.Stat(filepath.Join(base, "assets"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = storage.NewStorage(&config.StorageConfig{Mode: "cloud"}, zap.NewNop())
	assert.Error(t, err)
}
