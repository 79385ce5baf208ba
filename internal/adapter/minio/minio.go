package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sm8ta/ridewise/internal/core/domain"
	"github.com/sm8ta/ridewise/internal/core/ports"
)

type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
	Region          string
}

// BackupClient keeps exported documents in an S3-compatible bucket.
type BackupClient struct {
	client *minio.Client
	bucket string
	logger ports.LoggerPort
}

func New(ctx context.Context, cfg Config, logger ports.LoggerPort) (*BackupClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
		logger.Info("Backup bucket created", map[string]interface{}{
			"bucket": cfg.Bucket,
		})
	}

	return &BackupClient{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

func (c *BackupClient) Upload(ctx context.Context, key string, data []byte) error {
	info, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	c.logger.Debug("Backup object stored", map[string]interface{}{
		"key":  key,
		"size": info.Size,
		"etag": info.ETag,
	})
	return nil
}

func (c *BackupClient) Download(ctx context.Context, key string) ([]byte, error) {
	object, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError(key, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, mapError(key, err)
	}
	return data, nil
}

func (c *BackupClient) List(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for obj := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func mapError(key string, err error) error {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
		return fmt.Errorf("backup %s: %w", key, domain.ErrNotFound)
	}
	return fmt.Errorf("get object %s: %w", key, err)
}
