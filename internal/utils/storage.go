package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"doclib/internal/config"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// FileStorage stores and serves document blobs.
type FileStorage interface {
	Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*UploadResult, error)
	// Delete removes a blob. A missing blob is not an error.
	Delete(ctx context.Context, key string) error
	// Serve returns a reader for locally held blobs, or a URL the client
	// should be redirected to.
	Serve(ctx context.Context, key, url string) (*Download, error)
	Name() string
}

// UploadResult contains the result of a file upload.
type UploadResult struct {
	URL  string
	Key  string
	Size int64
}

// Download is either a stream or a redirect target
type Download struct {
	Reader      io.ReadCloser
	RedirectURL string
	Size        int64
}

var ErrBlobNotFound = errors.New("blob not found")

// BlobName returns "<unix-nano>-<uuid v4><ext>" so concurrent uploads never collide.
func BlobName(originalName string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("failed to generate blob id: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), id.String(), ext), nil
}

// NewFileStorage builds the configured provider
func NewFileStorage(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (FileStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(cfg.Provider) {
	case "", "local":
		svc, err := NewLocalStorage(cfg.LocalDir, cfg.LocalBaseURL, logger)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case "cloudinary":
		svc, err := NewCloudinaryService(cfg, logger)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case "s3":
		svc, err := NewS3Storage(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}

// ===============================
// LOCAL DISK
// ===============================

// LocalStorage keeps blobs under a directory served at baseURL
type LocalStorage struct {
	dir     string
	baseURL string
	logger  *zap.Logger
}

// NewLocalStorage creates the upload directory if needed
func NewLocalStorage(dir, baseURL string, logger *zap.Logger) (*LocalStorage, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	logger.Info("Local storage ready", zap.String("dir", dir))
	return &LocalStorage{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/"), logger: logger}, nil
}

func (s *LocalStorage) Name() string { return "local" }

// Dir returns the root directory; the router serves it read-only.
func (s *LocalStorage) Dir() string { return s.dir }

func (s *LocalStorage) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*UploadResult, error) {
	name, err := BlobName(file.Filename)
	if err != nil {
		return nil, err
	}
	key := path.Join(folder, name)
	target, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnableToOpenFile, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob: %w", err)
	}
	n, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(target)
		return nil, fmt.Errorf("failed to write blob: %w", err)
	}

	s.logger.Debug("Blob stored", zap.String("key", key), zap.Int64("size", n))
	return &UploadResult{URL: s.baseURL + "/" + key, Key: key, Size: n}, nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

func (s *LocalStorage) Serve(ctx context.Context, key, _ string) (*Download, error) {
	target, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Download{Reader: f, Size: info.Size()}, nil
}

// resolve keeps keys inside dir
func (s *LocalStorage) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}
