package utils

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"doclib/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

var (
	ErrMissingCredentials = errors.New("cloudinary credentials are missing")
	ErrUploadFailed       = errors.New("failed to upload file")
	ErrDeleteFailed       = errors.New("failed to delete file")
)

// CloudinaryService stores blobs in Cloudinary. Keys have the form
// "<resource type>/<public id>" since deletes need the resource type.
type CloudinaryService struct {
	client        *cloudinary.Cloudinary
	folder        string
	uploadTimeout time.Duration
	deleteTimeout time.Duration
	maxRetries    uint64
	logger        *zap.Logger
}

// NewCloudinaryService creates a Cloudinary backed FileStorage
func NewCloudinaryService(cfg *config.StorageConfig, logger *zap.Logger) (*CloudinaryService, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, ErrMissingCredentials
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	logger.Info("Cloudinary service initialized successfully",
		zap.String("cloud", cfg.CloudinaryCloudName),
		zap.String("folder", cfg.CloudinaryFolder),
	)
	return &CloudinaryService{
		client:        cld,
		folder:        cfg.CloudinaryFolder,
		uploadTimeout: 60 * time.Second,
		deleteTimeout: 10 * time.Second,
		maxRetries:    3,
		logger:        logger,
	}, nil
}

func (c *CloudinaryService) Name() string { return "cloudinary" }

func ptrBool(b bool) *bool { return &b }

func (c *CloudinaryService) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*UploadResult, error) {
	start := time.Now()

	name, err := BlobName(file.Filename)
	if err != nil {
		return nil, err
	}
	params := uploader.UploadParams{
		PublicID:       strings.TrimSuffix(name, path.Ext(name)),
		Folder:         path.Join(c.folder, folder),
		ResourceType:   "auto",
		UniqueFilename: ptrBool(false),
		Overwrite:      ptrBool(false),
	}

	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	var result *uploader.UploadResult
	operation := func() error {
		src, err := file.Open()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("%w: %v", ErrUnableToOpenFile, err))
		}
		defer src.Close()

		res, err := c.client.Upload.Upload(ctx, src, params)
		if err != nil {
			return err
		}
		if res.Error.Message != "" {
			return errors.New(res.Error.Message)
		}
		result = res
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	err = backoff.RetryNotify(operation, policy, func(err error, d time.Duration) {
		c.logger.Warn("Upload attempt failed",
			zap.String("filename", file.Filename),
			zap.Error(err),
			zap.Duration("backoff", d))
	})
	if err != nil {
		c.logger.Error("All upload attempts failed", zap.String("filename", file.Filename), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	c.logger.Info("File uploaded successfully",
		zap.String("public_id", result.PublicID),
		zap.Int("bytes", result.Bytes),
		zap.Duration("duration", time.Since(start)))

	return &UploadResult{
		URL:  result.SecureURL,
		Key:  result.ResourceType + "/" + result.PublicID,
		Size: int64(result.Bytes),
	}, nil
}

func (c *CloudinaryService) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	resourceType, publicID, ok := strings.Cut(key, "/")
	if !ok {
		resourceType, publicID = "image", key
	}

	ctx, cancel := context.WithTimeout(ctx, c.deleteTimeout)
	defer cancel()

	res, err := c.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		c.logger.Error("Failed to delete file", zap.String("public_id", publicID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("%w: %s", ErrDeleteFailed, res.Error.Message)
	}
	if res.Result == "not found" {
		c.logger.Debug("Blob already gone", zap.String("public_id", publicID))
	}
	return nil
}

func (c *CloudinaryService) Serve(ctx context.Context, _ string, url string) (*Download, error) {
	if url == "" {
		return nil, ErrBlobNotFound
	}
	return &Download{RedirectURL: url}, nil
}
