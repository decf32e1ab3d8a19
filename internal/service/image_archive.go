package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/menuwise/backend/config"
	"github.com/pageza/menuwise/backend/internal/logger"
	"github.com/pageza/menuwise/backend/internal/types"
)

// S3PutObjectAPI is the part of *s3.Client the archive needs.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageArchive stores menu photos uploaded by signed-in users.
type S3ImageArchive struct {
	client S3PutObjectAPI
	bucket string
	log    *zap.Logger
}

// NewS3ImageArchive returns nil when s3cfg is nil, which disables archiving.
func NewS3ImageArchive(s3cfg *config.S3Config, log *zap.Logger) *S3ImageArchive {
	if s3cfg == nil || s3cfg.Client == nil {
		return nil
	}
	return newS3ImageArchive(s3cfg.Client, s3cfg.BucketName, log)
}

func newS3ImageArchive(client S3PutObjectAPI, bucket string, log *zap.Logger) *S3ImageArchive {
	return &S3ImageArchive{client: client, bucket: bucket, log: logger.OrNop(log)}
}

// Archive uploads image under menu-images/<user id>/ and returns the object key.
func (a *S3ImageArchive) Archive(ctx context.Context, identity *types.Identity, image []byte) (string, error) {
	if identity == nil {
		return "", ErrUnauthenticated
	}

	contentType := http.DetectContentType(image)
	key := fmt.Sprintf("menu-images/%s/%s%s", identity.UserID, uuid.New(), imageExtension(contentType))

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(image),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	a.log.Info("archived menu image", zap.String("bucket", a.bucket), zap.String("key", key))
	return key, nil
}

func imageExtension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
