package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"sync"

	"coursehub/internal/pkg/uploader"
	"coursehub/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	testUploadFolder = "test-uploads"
	// 批量上传的并发上限
	maxParallelUploads = 5
)

// UploadHandler 上传自检接口
type UploadHandler struct {
	uploader uploader.Uploader
}

func NewUploadHandler(up uploader.Uploader) *UploadHandler {
	if up == nil {
		up = uploader.Disabled{}
	}
	return &UploadHandler{uploader: up}
}

// UploadTest 上传单个文件 (form-data: file) 或批量文件 (form-data: files)
func (h *UploadHandler) UploadTest(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "No file provided. Use form-data with key 'file'.")
		return
	}

	if single := form.File["file"]; len(single) > 0 {
		urls, err := h.uploadAll(c, single[:1])
		if err != nil {
			h.fail(c, err)
			return
		}
		response.Success(c, "", gin.H{"url": urls[0]})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		response.Error(c, http.StatusBadRequest, "No file provided. Use form-data with key 'file'.")
		return
	}
	urls, err := h.uploadAll(c, files)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, "", gin.H{"urls": urls})
}

func (h *UploadHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, uploader.ErrNotConfigured) {
		response.Error(c, http.StatusInternalServerError, "File upload is not configured")
		return
	}
	response.Error(c, http.StatusInternalServerError, "Upload failed: "+err.Error())
}

// uploadAll uploads files concurrently and keeps the result order.
func (h *UploadHandler) uploadAll(c *gin.Context, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, len(files))

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	sem := make(chan struct{}, maxParallelUploads)
	ctx := c.Request.Context()

	for i, fh := range files {
		wg.Add(1)
		go func(index int, fh *multipart.FileHeader) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			f, closer, err := uploader.FromMultipart(fh)
			if err != nil {
				errOnce.Do(func() { firstErr = err })
				return
			}
			defer closer.Close()

			url, err := h.uploader.Upload(ctx, f, testUploadFolder, uploader.KindOf(f.ContentType))
			if err != nil {
				errOnce.Do(func() { firstErr = err })
				return
			}
			urls[index] = url
		}(i, fh)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return urls, nil
}
