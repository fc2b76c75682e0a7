package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/paragraf-app/core/internal/config"
)

var ErrUploadDisabled = errors.New("s3 snapshot upload is not configured")

// Uploader pushes rendered documents to the configured S3 bucket.
type Uploader struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewUploader returns nil without error when uploads are disabled.
func NewUploader(opts config.S3Options) (*Uploader, error) {
	if !opts.Enabled {
		return nil, nil
	}
	if opts.Bucket == "" || opts.Region == "" || opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		return nil, fmt.Errorf("incomplete s3 config: bucket/region/access_key_id/secret_access_key are required")
	}

	s3opts := s3.Options{
		Region:       opts.Region,
		Credentials:  awscreds.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		UsePathStyle: opts.PathStyleAccess,
	}
	if endpoint := strings.TrimSpace(opts.Endpoint); endpoint != "" {
		s3opts.BaseEndpoint = aws.String(strings.TrimRight(endpoint, "/"))
	}

	return &Uploader{
		client: s3.New(s3opts),
		bucket: opts.Bucket,
		prefix: strings.Trim(opts.Prefix, "/"),
	}, nil
}

// Upload stores the document and returns its object location.
func (u *Uploader) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if u.prefix != "" {
		key = u.prefix + "/" + key
	}

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}
