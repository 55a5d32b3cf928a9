package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// A deployment without object storage still registers the upload routes; the
// handler must answer 503 instead of dereferencing the absent client.
func TestUploadRoutesWithoutStorageAnswer503(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewUploadHandler(nil, nil)

	r := gin.New()
	r.POST("/v1/uploads/avatar", h.Avatar)
	r.POST("/v1/uploads/attachment", h.Attachment)
	r.GET("/v1/uploads/url", h.DownloadURL)
	r.DELETE("/v1/uploads", h.Delete)

	for _, tc := range []struct {
		method string
		target string
	}{
		{http.MethodPost, "/v1/uploads/avatar"},
		{http.MethodPost, "/v1/uploads/attachment"},
		{http.MethodGet, "/v1/uploads/url?key=avatars/x.png"},
		{http.MethodDelete, "/v1/uploads?key=avatars/x.png"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.target, nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, "%s %s", tc.method, tc.target)
		assert.Contains(t, w.Body.String(), "uploads not configured")
	}
}
