package utils

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"doclib/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// buildFileHeader round-trips content through a multipart form so the
// header is backed by a real part.
func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	_, fh, err := req.FormFile("file")
	require.NoError(t, err)
	return fh
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")

func pngBytes() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple", "Intro to Go", "intro-to-go"},
		{"punctuation", "Hello, World!!", "hello-world"},
		{"accents", "Café Résumé", "cafe-resume"},
		{"stroked d", "Đại số tuyến tính", "dai-so-tuyen-tinh"},
		{"collapses separators", "  a -- b__c  ", "a-b-c"},
		{"empty", "", "document"},
		{"only symbols", "!!!", "document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}

	t.Run("long titles are capped", func(t *testing.T) {
		slug := Slugify(strings.Repeat("abc ", 200))
		assert.LessOrEqual(t, len(slug), maxSlugBase)
		assert.False(t, strings.HasSuffix(slug, "-"))
	})
}

func TestBlobName(t *testing.T) {
	pattern := regexp.MustCompile(`^\d+-[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[0-9a-f]{4}-[0-9a-f]{12}\.pdf$`)

	names := make(map[string]struct{})
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, err := BlobName("Report.PDF")
			assert.NoError(t, err)
			mu.Lock()
			names[name] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, names, 50)
	for name := range names {
		assert.Regexp(t, pattern, name)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cretpass", 4)
	require.NoError(t, err)
	assert.NoError(t, CheckPassword(hash, "s3cretpass"))
	assert.Error(t, CheckPassword(hash, "wrong"))
}

func TestFileValidator(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts pdf under standard profile", func(t *testing.T) {
		v := NewFileValidator(ProfileFor(ProfileStandard), zap.NewNop())
		meta, err := v.Validate(ctx, buildFileHeader(t, "notes.pdf", pdfBytes))
		require.NoError(t, err)
		assert.Equal(t, "pdf", meta.Format)
		assert.Equal(t, "application/pdf", meta.MimeType)
	})

	t.Run("jpeg maps to jpg format", func(t *testing.T) {
		jpg := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0}, 32)...)
		v := NewFileValidator(ProfileFor(ProfileStandard), zap.NewNop())
		meta, err := v.Validate(ctx, buildFileHeader(t, "photo.JPEG", jpg))
		require.NoError(t, err)
		assert.Equal(t, "jpg", meta.Format)
	})

	t.Run("text is extended only", func(t *testing.T) {
		fh := buildFileHeader(t, "readme.txt", []byte("plain words here"))
		_, err := NewFileValidator(ProfileFor(ProfileStandard), nil).Validate(ctx, fh)
		assert.ErrorIs(t, err, ErrInvalidContentType)

		meta, err := NewFileValidator(ProfileFor(ProfileExtended), nil).Validate(ctx, fh)
		require.NoError(t, err)
		assert.Equal(t, "txt", meta.Format)
	})

	t.Run("content must match extension", func(t *testing.T) {
		v := NewFileValidator(ProfileFor(ProfileStandard), nil)
		_, err := v.Validate(ctx, buildFileHeader(t, "fake.pdf", pngBytes()))
		assert.ErrorIs(t, err, ErrInvalidExtension)
	})

	t.Run("size limit", func(t *testing.T) {
		profile := ProfileFor(ProfileStandard)
		profile.MaxFileSize = 10
		_, err := NewFileValidator(profile, nil).Validate(ctx, buildFileHeader(t, "big.pdf", pdfBytes))
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("thumbnail profile", func(t *testing.T) {
		v := NewFileValidator(ImageProfile(1<<20), nil)
		_, err := v.Validate(ctx, buildFileHeader(t, "thumb.png", pngBytes()))
		assert.NoError(t, err)
		_, err = v.Validate(ctx, buildFileHeader(t, "thumb.pdf", pdfBytes))
		assert.ErrorIs(t, err, ErrInvalidContentType)
	})
}

func TestKnownFormats(t *testing.T) {
	assert.True(t, IsKnownFormat("PDF"))
	assert.True(t, IsKnownFormat("docx"))
	assert.False(t, IsKnownFormat("exe"))
	assert.False(t, IsKnownFormat(""))
}

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost/uploads/", zap.NewNop())
	require.NoError(t, err)

	res, err := store.Upload(ctx, buildFileHeader(t, "notes.pdf", pdfBytes), "documents")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Key, "documents/"))
	assert.Equal(t, "http://localhost/uploads/"+res.Key, res.URL)
	assert.Equal(t, int64(len(pdfBytes)), res.Size)

	dl, err := store.Serve(ctx, res.Key, res.URL)
	require.NoError(t, err)
	got, err := io.ReadAll(dl.Reader)
	require.NoError(t, err)
	require.NoError(t, dl.Reader.Close())
	assert.Equal(t, pdfBytes, got)

	require.NoError(t, store.Delete(ctx, res.Key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(res.Key)))
	assert.True(t, os.IsNotExist(err))

	t.Run("deleting a missing blob succeeds", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, res.Key))
		assert.NoError(t, store.Delete(ctx, ""))
	})

	t.Run("serving a missing blob", func(t *testing.T) {
		_, err := store.Serve(ctx, res.Key, "")
		assert.ErrorIs(t, err, ErrBlobNotFound)
	})

	t.Run("keys cannot escape the directory", func(t *testing.T) {
		target, err := store.resolve("../../etc/passwd")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(target, dir))
	})
}

func TestNewFileStorage(t *testing.T) {
	_, err := NewFileStorage(context.Background(), configForProvider("ftp"), zap.NewNop())
	assert.Error(t, err)

	_, err = NewFileStorage(context.Background(), configForProvider("cloudinary"), zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingCredentials)

	local, err := NewFileStorage(context.Background(), configForProvider("local"), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "local", local.Name())
}

func TestDeviceInfo(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", strings.Repeat("x", 300))
	assert.Len(t, DeviceInfo(req), 255)

	req.Header.Del("User-Agent")
	assert.Equal(t, "unknown", DeviceInfo(req))
}

func configForProvider(provider string) *config.StorageConfig {
	return &config.StorageConfig{Provider: provider, LocalDir: filepath.Join(os.TempDir(), "doclib-test-uploads")}
}
