package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"joingo/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

var ErrStorageDisabled = errors.New("object storage is not configured")

// ObjectStorage 上傳物件並回傳對外網址
type ObjectStorage interface {
	PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	PublicURL(key string) string
}

type MinioClient struct {
	logger    *zap.Logger
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewObjectStorage 未設定 MINIO__ENDPOINT 時回傳停用的實作
func NewObjectStorage(logger *zap.Logger, config *config.Configuration) (ObjectStorage, error) {
	conf := config.MinIO
	if conf.Endpoint == "" || conf.Bucket == "" {
		logger.Warn("minio not configured, avatar upload disabled")
		return disabledStorage{}, nil
	}
	mc, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}

	publicURL := strings.TrimRight(conf.PublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if conf.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, conf.Endpoint, conf.Bucket)
	}
	c := &MinioClient{logger: logger, client: mc, bucket: conf.Bucket, publicURL: publicURL}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, conf.Bucket, minio.MakeBucketOptions{}); err != nil {
		exists, xerr := mc.BucketExists(ctx, conf.Bucket)
		if xerr != nil || !exists {
			// 啟動時 MinIO 不一定已就緒，上傳時會再回報錯誤
			logger.Warn("minio bucket ensure failed", zap.String("bucket", conf.Bucket), zap.Error(err))
		}
	}
	logger.Info("minio connected", zap.String("endpoint", conf.Endpoint), zap.String("bucket", conf.Bucket))
	return c, nil
}

func (c *MinioClient) PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := c.client.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	return err
}

func (c *MinioClient) PublicURL(key string) string {
	return c.publicURL + "/" + key
}

type disabledStorage struct{}

func (disabledStorage) PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	return ErrStorageDisabled
}

func (disabledStorage) PublicURL(key string) string {
	return ""
}
