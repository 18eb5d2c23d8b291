package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

type Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // optional, for S3-compatible stores
	Folder          string
}

// File is an uploaded image as received from the client.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type S3Uploader struct {
	client   *s3.Client
	bucket   string
	region   string
	endpoint string
	folder   string
}

func NewS3Uploader(ctx context.Context, cfg *Config) (*S3Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{
		client:   client,
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		folder:   cfg.Folder,
	}, nil
}

// Upload stores the file under a unique key and returns its public URL.
func (u *S3Uploader) Upload(ctx context.Context, f File) (string, error) {
	key := ObjectKey(u.folder, f.Name)

	input := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   f.Body,
		ACL:    types.ObjectCannedACLPublicRead,
	}
	if f.ContentType != "" {
		input.ContentType = aws.String(f.ContentType)
	}
	if f.Size > 0 {
		input.ContentLength = aws.Int64(f.Size)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("s3: put object %s: %w", key, err)
	}

	return ObjectURL(u.endpoint, u.bucket, u.region, key), nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SecureFilename strips directories and anything outside [A-Za-z0-9._-].
func SecureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(strings.ReplaceAll(name, " ", "_"), "")
	name = strings.Trim(name, "._")
	if name == "" {
		return "image"
	}
	return name
}

// ObjectKey builds "<folder>/<uuid hex>_<filename>".
func ObjectKey(folder, filename string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	key := id + "_" + SecureFilename(filename)
	if folder == "" {
		return key
	}
	return strings.Trim(folder, "/") + "/" + key
}

func ObjectURL(endpoint, bucket, region, key string) string {
	if endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", endpoint, bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}
