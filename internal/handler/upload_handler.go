package handler

import (
	"net/http"

	"ripple-chat/internal/middleware"
	"ripple-chat/internal/redis"
	"ripple-chat/internal/storage"
	"ripple-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 8 << 20

// UploadHandler stores avatars and message image attachments in object
// storage and hands back a fetchable URL.
type UploadHandler struct {
	store *storage.Client
	urls  *redis.URLCache
}

func NewUploadHandler(store *storage.Client, urls *redis.URLCache) *UploadHandler {
	return &UploadHandler{store: store, urls: urls}
}

// configured rejects the request when the deployment runs without object
// storage. The routes are always registered; the handler owns the answer.
func (h *UploadHandler) configured(c *gin.Context) bool {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("uploads not configured", "UNAVAILABLE"))
		return false
	}
	return true
}

// Avatar handles POST /uploads/avatar (multipart field "file").
func (h *UploadHandler) Avatar(c *gin.Context) {
	h.upload(c, storage.AvatarKey)
}

// Attachment handles POST /uploads/attachment (multipart field "file").
func (h *UploadHandler) Attachment(c *gin.Context) {
	h.upload(c, storage.AttachmentKey)
}

func (h *UploadHandler) upload(c *gin.Context, keyFor func(userID, filename string) string) {
	if !h.configured(c) {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("file is required", "INVALID_REQUEST"))
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, httpdto.NewErrorResponse("file too large", "TOO_LARGE"))
		return
	}

	ctx := c.Request.Context()
	key := keyFor(middleware.UserID(c), header.Filename)
	if _, err := h.store.Upload(ctx, key, header.Header.Get("Content-Type"), file); err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("upload failed", "INTERNAL_ERROR"))
		return
	}

	url, err := h.downloadURL(c, key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("upload failed", "INTERNAL_ERROR"))
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.UploadResponse{Key: key, URL: url}))
}

// DownloadURL handles GET /uploads/url?key=x, serving presigned URLs from
// the cache when possible.
func (h *UploadHandler) DownloadURL(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("key is required", "INVALID_REQUEST"))
		return
	}

	url, err := h.downloadURL(c, key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("presign failed", "INTERNAL_ERROR"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.UploadResponse{Key: key, URL: url}))
}

// Delete handles DELETE /uploads?key=x, removing the object and dropping any
// cached URL for it.
func (h *UploadHandler) Delete(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("key is required", "INVALID_REQUEST"))
		return
	}

	ctx := c.Request.Context()
	if err := h.store.Delete(ctx, key); err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("delete failed", "INTERNAL_ERROR"))
		return
	}
	if h.urls != nil {
		_ = h.urls.Invalidate(ctx, key)
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "deleted"}))
}

func (h *UploadHandler) downloadURL(c *gin.Context, key string) (string, error) {
	ctx := c.Request.Context()
	if h.urls != nil {
		if cached, err := h.urls.Get(ctx, key); err == nil && cached != "" {
			return cached, nil
		}
	}

	url, err := h.store.DownloadURL(ctx, key)
	if err != nil {
		return "", err
	}
	if h.urls != nil {
		_ = h.urls.Put(ctx, key, url)
	}
	return url, nil
}
