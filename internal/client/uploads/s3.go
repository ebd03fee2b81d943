package uploads

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/feedsync/internal/client/api"
	"github.com/dmitrijs2005/feedsync/internal/client/models"
)

// S3Config holds the settings for uploading directly to an S3-compatible
// object store (AWS S3, MinIO).
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string // MINIO_ROOT_USER for local MinIO
	SecretKey string // MINIO_ROOT_PASSWORD for local MinIO
	// PublicBaseURL is the prefix served to readers; defaults to
	// Endpoint/Bucket when empty.
	PublicBaseURL string
}

// S3Uploader puts attachment payloads straight into a bucket, for
// deployments where the client holds object-store credentials instead of
// going through the service's upload endpoint.
type S3Uploader struct {
	client *s3.Client
	cfg    S3Config
}

var newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
	return s3.NewFromConfig(cfg, optFns...)
}

func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{client: client, cfg: cfg}, nil
}

// storageKey spreads objects by date and randomizes the basename so user
// filenames can never collide in the bucket.
func storageKey(name string) string {
	d := time.Now()
	return fmt.Sprintf("posts/%d/%d/%d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), path.Ext(name))
}

func (u *S3Uploader) Upload(ctx context.Context, file models.PendingFile) (*api.UploadResult, error) {
	key := storageKey(file.Name)

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file.Data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("putting object: %w", err)
	}

	base := u.cfg.PublicBaseURL
	if base == "" {
		base = strings.TrimRight(u.cfg.Endpoint, "/") + "/" + u.cfg.Bucket
	}

	return &api.UploadResult{
		URL:  strings.TrimRight(base, "/") + "/" + key,
		Kind: string(models.KindFromContentType(file.ContentType)),
		Name: file.Name,
		Size: file.Size(),
	}, nil
}
