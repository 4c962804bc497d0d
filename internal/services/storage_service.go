// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/javajoker/storefront-api/internal/apperr"
	"github.com/javajoker/storefront-api/internal/config"
	"github.com/javajoker/storefront-api/internal/i18n"
)

// StorageService puts product images in S3, or under the local upload dir when AWS is not configured.
type StorageService struct {
	s3Client s3iface.S3API
	config   *config.Config
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64 // in bytes
	AllowedTypes []string
	IsPublic     bool
}

func NewStorageService(config *config.Config) (*StorageService, error) {
	if config.AWS.AccessKeyID == "" {
		// Local storage for development
		return &StorageService{config: config}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

// NewStorageServiceWithClient uses the given S3 client.
func NewStorageServiceWithClient(config *config.Config, client s3iface.S3API) *StorageService {
	return &StorageService{s3Client: client, config: config}
}

func (s *StorageService) UploadFileHeader(ctx context.Context, header *multipart.FileHeader, options UploadOptions) (*UploadResult, error) {
	file, err := header.Open()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, i18n.KeyUploadFailed, err)
	}
	defer file.Close()

	return s.UploadFile(ctx, file, header.Filename, header.Size, options)
}

func (s *StorageService) UploadFile(ctx context.Context, file io.Reader, filename string, size int64, options UploadOptions) (*UploadResult, error) {
	if options.MaxSize > 0 && size > options.MaxSize {
		return nil, apperr.New(apperr.KindValidation,
			fmt.Sprintf("file size %d bytes exceeds maximum allowed size %d bytes", size, options.MaxSize))
	}

	fileExt := strings.ToLower(filepath.Ext(filename))
	if len(options.AllowedTypes) > 0 && !contains(options.AllowedTypes, fileExt) {
		return nil, apperr.New(apperr.KindValidation, fmt.Sprintf("file type %s is not allowed", fileExt))
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, i18n.KeyUploadFailed, err)
	}

	mime := mimetype.Detect(fileBytes)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, apperr.New(apperr.KindValidation, "invalid image file")
	}

	key := s.generateFileName(filename, options.Folder)

	if s.s3Client != nil {
		return s.uploadToS3(ctx, fileBytes, key, mime.String(), options.IsPublic)
	}
	return s.uploadToLocal(fileBytes, key, mime.String())
}

func (s *StorageService) uploadToS3(ctx context.Context, fileBytes []byte, key, contentType string, isPublic bool) (*UploadResult, error) {
	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
	}

	if isPublic {
		params.ACL = aws.String("public-read")
	}

	if _, err := s.s3Client.PutObjectWithContext(ctx, params); err != nil {
		return nil, apperr.Internal("failed to upload to S3", err)
	}

	return &UploadResult{
		URL:      s.getS3URL(key),
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) uploadToLocal(fileBytes []byte, key, contentType string) (*UploadResult, error) {
	path := filepath.Join(s.config.Server.UploadDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, apperr.Internal("failed to create upload dir", err)
	}
	if err := os.WriteFile(path, fileBytes, 0o644); err != nil {
		return nil, apperr.Internal("failed to write upload", err)
	}

	return &UploadResult{
		URL:      fmt.Sprintf("%s/uploads/%s", strings.TrimRight(s.config.Server.PublicBaseURL, "/"), key),
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) GetDefaultUploadOptions(category string) UploadOptions {
	switch category {
	case "products":
		return UploadOptions{
			Folder:       "products",
			MaxSize:      10 * 1024 * 1024, // 10MB
			AllowedTypes: []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
			IsPublic:     true,
		}
	default:
		return UploadOptions{
			Folder:       "general",
			MaxSize:      5 * 1024 * 1024, // 5MB
			AllowedTypes: []string{".jpg", ".jpeg", ".png"},
			IsPublic:     false,
		}
	}
}

func (s *StorageService) generateFileName(originalName, folder string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	timestamp := time.Now().Format("20060102")
	filename := fmt.Sprintf("%s_%s%s", timestamp, uuid.New().String()[:8], ext)

	if folder != "" {
		return folder + "/" + filename
	}
	return filename
}

func (s *StorageService) getS3URL(key string) string {
	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.config.AWS.CloudFrontURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
