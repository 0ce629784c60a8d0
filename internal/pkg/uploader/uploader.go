package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"coursehub/internal/pkg/config"

	"github.com/google/uuid"
)

// ErrNotConfigured is returned when no storage provider is set up.
var ErrNotConfigured = errors.New("file upload is not configured")

// Kind selects how the provider stores the file.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindAuto  Kind = "auto"
)

// File is an upload payload.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.ReadSeeker
}

type Uploader interface {
	// Upload stores file under folder and returns its public URL.
	Upload(ctx context.Context, file File, folder string, kind Kind) (string, error)
}

// New builds the uploader for cfg.Provider. An empty provider yields a disabled uploader.
func New(cfg config.UploadConfig) (Uploader, error) {
	switch cfg.Provider {
	case "":
		return Disabled{}, nil
	case "cloudinary":
		if cfg.Cloudinary.CloudName == "" || cfg.Cloudinary.APIKey == "" {
			return Disabled{}, nil
		}
		return NewCloudinaryUploader(cfg.Cloudinary)
	case "oss":
		if cfg.OSS.Endpoint == "" || cfg.OSS.BucketName == "" {
			return Disabled{}, nil
		}
		return NewAliyunOSSUploader(cfg.OSS)
	case "s3":
		if cfg.S3.Bucket == "" {
			return Disabled{}, nil
		}
		return NewS3Uploader(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown upload provider %q", cfg.Provider)
	}
}

// Disabled rejects every upload.
type Disabled struct{}

func (Disabled) Upload(context.Context, File, string, Kind) (string, error) {
	return "", ErrNotConfigured
}

// FromMultipart opens a multipart file. The caller must close the returned closer.
func FromMultipart(fh *multipart.FileHeader) (File, io.Closer, error) {
	src, err := fh.Open()
	if err != nil {
		return File{}, nil, err
	}
	return File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Reader:      src,
	}, src, nil
}

// KindOf guesses the resource kind from the content type.
func KindOf(contentType string) Kind {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return KindImage
	case strings.HasPrefix(contentType, "video/"):
		return KindVideo
	default:
		return KindAuto
	}
}

// objectKey generates folder/YYYYMMDD/uuid.ext
func objectKey(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(folder, time.Now().Format("20060102"), uuid.New().String()+ext)
}
