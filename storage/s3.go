package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Dosada05/pool-tournament-manager/config"
	"github.com/Dosada05/pool-tournament-manager/utils"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type s3Store struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	cfg        config.StorageConfig
	allowed    map[string]bool
	objectBase string
	clock      utils.Clock
}

// NewS3ProfilePictureStore loads AWS configuration and builds the store. Static
// credentials are used when configured, otherwise the default chain.
func NewS3ProfilePictureStore(ctx context.Context, cfg config.StorageConfig, clock utils.Clock) (ProfilePictureStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}
	return newS3Store(awsCfg, cfg, clock), nil
}

func newS3Store(awsCfg aws.Config, cfg config.StorageConfig, clock utils.Clock) *s3Store {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	allowed := make(map[string]bool, len(cfg.AllowedImageTypes))
	for _, ct := range cfg.AllowedImageTypes {
		allowed[strings.ToLower(ct)] = true
	}

	objectBase := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if objectBase == "" {
		objectBase = fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.BucketName)
	}

	return &s3Store{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		cfg:        cfg,
		allowed:    allowed,
		objectBase: objectBase,
		clock:      clock,
	}
}

func (s *s3Store) GeneratePresignedUpload(ctx context.Context, playerID uuid.UUID, contentType string) (*PresignedUpload, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, known := extensions[contentType]
	if !s.allowed[contentType] || !known {
		return nil, fmt.Errorf("%w: %q", ErrContentTypeNotAllowed, contentType)
	}

	now := s.clock.Now()
	key := fmt.Sprintf(s.cfg.ProfilePicturePath, playerID) + fmt.Sprintf("-%d%s", now.UnixNano(), ext)

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.BucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.cfg.PresignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload (key: %s): %w", key, err)
	}

	return &PresignedUpload{
		UploadURL: req.URL,
		ObjectURL: s.objectURL(key),
		Key:       key,
		ExpiresAt: now.Add(s.cfg.PresignExpiry),
	}, nil
}

func (s *s3Store) objectURL(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.objectBase + "/" + strings.Join(segments, "/")
}

func (s *s3Store) ObjectKey(objectURL string) (string, bool) {
	prefix := s.objectBase + "/"
	if !strings.HasPrefix(objectURL, prefix) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimPrefix(objectURL, prefix))
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}

func (s *s3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object (key: %s): %w", key, err)
	}
	return nil
}

func (s *s3Store) CheckAccess(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.cfg.BucketName)})
	if err != nil {
		return fmt.Errorf("bucket %s is not accessible: %w", s.cfg.BucketName, err)
	}
	return nil
}
