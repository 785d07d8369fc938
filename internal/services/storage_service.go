// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bangazon/bangazon-backend/internal/config"
)

const productImageFolder = "products"

// StorageService keeps product images in an S3 bucket when AWS credentials are
// configured and in a local directory otherwise.
type StorageService struct {
	s3Client *s3.S3
	aws      config.AWSConfig
	storage  config.StorageConfig
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	s := &StorageService{
		aws:     cfg.AWS,
		storage: cfg.Storage,
	}

	if !cfg.UsesS3() {
		// Local disk for development
		if err := os.MkdirAll(cfg.Storage.UploadDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
		return s, nil
	}

	// Create AWS session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	s.s3Client = s3.New(sess)
	return s, nil
}

// SaveImage validates the image by size and signature and stores it under a
// freshly generated key. The extension follows the detected content type, never
// the client's file name.
func (s *StorageService) SaveImage(ctx context.Context, r io.Reader) (*UploadResult, error) {
	// Read one byte past the limit to detect oversize uploads
	data, err := io.ReadAll(io.LimitReader(r, s.storage.MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > s.storage.MaxImageSize {
		return nil, ErrImageTooLarge
	}

	mimeType, ext, ok := detectImageType(data)
	if !ok {
		return nil, ErrInvalidImage
	}

	key := generateKey(productImageFolder, ext)

	if s.s3Client != nil {
		return s.uploadToS3(ctx, data, key, mimeType)
	}
	return s.uploadToLocal(data, key, mimeType)
}

func (s *StorageService) uploadToS3(ctx context.Context, data []byte, key, contentType string) (*UploadResult, error) {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.aws.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		URL:      s.URL(key),
		Key:      key,
		Size:     int64(len(data)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) uploadToLocal(data []byte, key, contentType string) (*UploadResult, error) {
	fullPath := s.localPath(key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	// O_EXCL so two uploads can never share a file
	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create image file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to close image file: %w", err)
	}

	return &UploadResult{
		URL:      s.URL(key),
		Key:      key,
		Size:     int64(len(data)),
		MimeType: contentType,
	}, nil
}

// DeleteImage removes a stored image. A key that no longer exists is not an error.
func (s *StorageService) DeleteImage(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	if s.s3Client == nil {
		err := os.Remove(s.localPath(key))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete local image: %w", err)
		}
		return nil
	}

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.aws.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}

	return nil
}

// deleteImageBestEffort is used on compensation paths where the caller already
// has a more important error to report.
func (s *StorageService) deleteImageBestEffort(ctx context.Context, key string) {
	if s == nil {
		return
	}
	if err := s.DeleteImage(ctx, key); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to delete stored image")
	}
}

// URL is the public address of a stored image.
func (s *StorageService) URL(key string) string {
	if key == "" {
		return ""
	}

	if s.s3Client == nil {
		return strings.TrimRight(s.storage.PublicBaseURL, "/") + "/" + key
	}

	if s.aws.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.aws.CloudFrontURL, "/"), key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.aws.S3Bucket, s.aws.Region, key)
}

// UsesS3 reports whether images go to the bucket rather than the upload directory.
func (s *StorageService) UsesS3() bool {
	return s.s3Client != nil
}

func (s *StorageService) localPath(key string) string {
	return filepath.Join(s.storage.UploadDir, filepath.FromSlash(path.Clean("/" + key)))
}

func generateKey(folder, ext string) string {
	timestamp := time.Now().UTC().Format("20060102")
	return fmt.Sprintf("%s/%s_%s%s", folder, timestamp, uuid.NewString(), ext)
}

// detectImageType checks the file signature and returns the content type and
// the extension to store the image under.
func detectImageType(buffer []byte) (mimeType, ext string, ok bool) {
	switch {
	case len(buffer) >= 3 && buffer[0] == 0xFF && buffer[1] == 0xD8 && buffer[2] == 0xFF:
		return "image/jpeg", ".jpg", true
	case len(buffer) >= 8 && bytes.Equal(buffer[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}):
		return "image/png", ".png", true
	case len(buffer) >= 6 && (string(buffer[:6]) == "GIF87a" || string(buffer[:6]) == "GIF89a"):
		return "image/gif", ".gif", true
	default:
		return "", "", false
	}
}
