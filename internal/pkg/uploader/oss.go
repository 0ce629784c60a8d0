package uploader

import (
	"context"
	"fmt"

	"coursehub/internal/pkg/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

type AliyunOSSUploader struct {
	bucket *oss.Bucket
	config config.OSSConfig
}

func NewAliyunOSSUploader(cfg config.OSSConfig) (*AliyunOSSUploader, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, err
	}

	return &AliyunOSSUploader{
		bucket: bucket,
		config: cfg,
	}, nil
}

func (u *AliyunOSSUploader) Upload(ctx context.Context, file File, folder string, _ Kind) (string, error) {
	key := objectKey(folder, file.Name)

	opts := []oss.Option{oss.WithContext(ctx)}
	if file.ContentType != "" {
		opts = append(opts, oss.ContentType(file.ContentType))
	}
	if err := u.bucket.PutObject(key, file.Reader, opts...); err != nil {
		return "", err
	}

	// bucket is public-read or fronted by a CDN
	return fmt.Sprintf("https://%s.%s/%s", u.config.BucketName, u.config.Endpoint, key), nil
}
