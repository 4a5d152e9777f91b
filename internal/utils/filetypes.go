package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Upload profiles.
const (
	ProfileStandard = "standard"
	ProfileExtended = "extended"
)

var (
	ErrFileTooLarge       = errors.New("file size exceeds limit")
	ErrEmptyFile          = errors.New("file is empty")
	ErrInvalidContentType = errors.New("invalid content type")
	ErrInvalidExtension   = errors.New("invalid file extension")
	ErrUnableToOpenFile   = errors.New("unable to open file")
	ErrUnableToReadFile   = errors.New("unable to read file")
)

// KnownFormats lists every format a document can be filtered by.
var KnownFormats = []string{
	"pdf", "doc", "docx", "ppt", "pptx", "xls", "xlsx", "txt", "csv",
	"zip", "rar", "jpg", "png", "gif", "webp", "mp4", "mp3",
}

// IsKnownFormat reports whether format is one of KnownFormats
func IsKnownFormat(format string) bool {
	return slices.Contains(KnownFormats, strings.ToLower(format))
}

// mime type by extension for every format a profile may allow
var extensionTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".zip":  "application/zip",
	".rar":  "application/vnd.rar",
	".txt":  "text/plain",
	".csv":  "text/csv",
	".mp4":  "video/mp4",
	".mp3":  "audio/mpeg",
}

// UploadProfile is an allow-list of extensions plus a size cap
type UploadProfile struct {
	Name        string
	MaxFileSize int64
	Extensions  []string
}

var standardExtensions = []string{".pdf", ".jpg", ".jpeg", ".png", ".doc", ".docx", ".ppt", ".pptx", ".zip"}

// ProfileFor returns the named profile, falling back to standard.
func ProfileFor(name string) UploadProfile {
	if name == ProfileExtended {
		return UploadProfile{
			Name:        ProfileExtended,
			MaxFileSize: 25 << 20,
			Extensions: append(slices.Clone(standardExtensions),
				".gif", ".webp", ".xls", ".xlsx", ".mp4", ".mp3", ".txt", ".csv", ".rar"),
		}
	}
	return UploadProfile{
		Name:        ProfileStandard,
		MaxFileSize: 10 << 20,
		Extensions:  slices.Clone(standardExtensions),
	}
}

// ImageProfile restricts thumbnails to web image formats.
func ImageProfile(maxSize int64) UploadProfile {
	return UploadProfile{
		Name:        "image",
		MaxFileSize: maxSize,
		Extensions:  []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
	}
}

// FileMeta is what validation learned about an upload
type FileMeta struct {
	Name      string
	Extension string
	Format    string
	MimeType  string
	Size      int64
}

// FileValidator checks uploads against a profile
type FileValidator struct {
	Profile UploadProfile
	Logger  *zap.Logger
}

// NewFileValidator creates a validator for profile
func NewFileValidator(profile UploadProfile, logger *zap.Logger) *FileValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileValidator{Profile: profile, Logger: logger}
}

// Validate checks size, extension and sniffed content. Errors wrap
// ErrFileTooLarge, ErrInvalidExtension or ErrInvalidContentType.
func (v *FileValidator) Validate(ctx context.Context, file *multipart.FileHeader) (*FileMeta, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if file.Size <= 0 {
		return nil, ErrEmptyFile
	}
	if file.Size > v.Profile.MaxFileSize {
		v.Logger.Warn("File size validation failed",
			zap.String("filename", file.Filename),
			zap.Int64("size", file.Size),
			zap.Int64("limit", v.Profile.MaxFileSize))
		return nil, fmt.Errorf("%w: %d bytes exceeds %d bytes", ErrFileTooLarge, file.Size, v.Profile.MaxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !slices.Contains(v.Profile.Extensions, ext) {
		return nil, fmt.Errorf("%w: %q is not allowed by the %s profile", ErrInvalidContentType, ext, v.Profile.Name)
	}
	declared := extensionTypes[ext]

	detected, err := sniff(file)
	if err != nil {
		return nil, err
	}
	if !contentMatches(detected, declared) {
		v.Logger.Warn("File content does not match extension",
			zap.String("filename", file.Filename),
			zap.String("extension", ext),
			zap.String("detected", detected))
		return nil, fmt.Errorf("%w: file has extension %s but content is %s", ErrInvalidExtension, ext, detected)
	}

	return &FileMeta{
		Name:      filepath.Base(file.Filename),
		Extension: ext,
		Format:    FormatFromExtension(ext),
		MimeType:  declared,
		Size:      file.Size,
	}, nil
}

// FormatFromExtension maps ".jpeg" to "jpg" and strips the dot otherwise
func FormatFromExtension(ext string) string {
	f := strings.TrimPrefix(strings.ToLower(ext), ".")
	if f == "jpeg" {
		return "jpg"
	}
	return f
}

func sniff(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnableToOpenFile, err)
	}
	defer src.Close()

	buf := make([]byte, 512)
	n, err := src.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("%w: %v", ErrUnableToReadFile, err)
	}
	ct := http.DetectContentType(buf[:n])
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct, nil
}

// contentMatches tolerates sniffing limits: OOXML files are zip archives,
// legacy office and rar files are opaque, and csv sniffs as plain text.
func contentMatches(detected, declared string) bool {
	if detected == declared {
		return true
	}
	switch {
	case detected == "application/zip":
		return strings.Contains(declared, "openxmlformats")
	case detected == "application/octet-stream":
		return declared == "application/msword" ||
			declared == "application/vnd.ms-powerpoint" ||
			declared == "application/vnd.ms-excel" ||
			declared == "application/vnd.rar" ||
			declared == "audio/mpeg"
	case detected == "application/x-rar-compressed":
		return declared == "application/vnd.rar"
	case detected == "text/plain":
		return strings.HasPrefix(declared, "text/")
	}
	return false
}
