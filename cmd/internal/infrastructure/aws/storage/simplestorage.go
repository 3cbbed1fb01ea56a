package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const basePath = "filings/"

type S3Client interface {
	UploadFile(ctx context.Context, body io.ReadSeeker, filename string) (string, error)
}

type storageClient struct {
	bucket string
	client *s3.Client
}

func NewStorageClient(ctx context.Context, bucket, region string) (S3Client, error) {
	if bucket == "" {
		return nil, errors.New("archive bucket is empty")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg)
	return &storageClient{
		bucket: bucket,
		client: client,
	}, nil
}

// UploadFile stores body under filings/<filename> and returns the object key.
func (s *storageClient) UploadFile(ctx context.Context, body io.ReadSeeker, filename string) (string, error) {
	if filename == "" {
		return "", errors.New("filename is empty")
	}

	mimeType, err := contentType(body, filename)
	if err != nil {
		return "", err
	}

	key := basePath + filename
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: &mimeType,
	}

	_, err = s.client.PutObject(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to %s: %w", key, s.bucket, err)
	}
	return key, nil
}

// contentType resolves the MIME type from the extension, sniffing the first
// bytes of body when the extension is unknown. body is rewound afterwards.
func contentType(body io.ReadSeeker, filename string) (string, error) {
	if mimeType := mime.TypeByExtension(filepath.Ext(filename)); mimeType != "" {
		return mimeType, nil
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}

	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}
