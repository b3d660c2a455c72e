package storage

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(signer Signer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(newTestService(signer))
	handler.RegisterRoutes(r.Group("/products/api"))
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_GeneratePresignedURL(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := setupHandlerTest(&stubSigner{})

		w := postJSON(t, r, "/products/api/generate-presigned-url/", gin.H{
			"file_name":     "book.pdf",
			"file_type":     "application/pdf",
			"file_category": "pdf",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp GeneratePresignedURLResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.True(t, strings.HasPrefix(resp.ObjectKey, "pdfs/"))
		assert.Contains(t, resp.URL, resp.ObjectKey)
		assert.Equal(t, "https://cdn.example.com/"+resp.ObjectKey, resp.PublicURL)
		assert.Equal(t, "application/pdf", resp.FileType)
		assert.NotEmpty(t, resp.ExpiresAt)
	})

	t.Run("missing file name is a coded 400", func(t *testing.T) {
		r := setupHandlerTest(&stubSigner{})

		w := postJSON(t, r, "/products/api/generate-presigned-url/", gin.H{
			"file_type":     "application/pdf",
			"file_category": "pdf",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["success"])
		assert.Equal(t, "MISSING_FIELD", resp["code"])
	})

	t.Run("unknown category is a coded 400", func(t *testing.T) {
		r := setupHandlerTest(&stubSigner{})

		w := postJSON(t, r, "/products/api/generate-presigned-url/", gin.H{
			"file_name":     "clip.mp4",
			"file_category": "video",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "INVALID_ENUM", resp["code"])
	})

	t.Run("malformed body", func(t *testing.T) {
		r := setupHandlerTest(&stubSigner{})

		req := httptest.NewRequest(http.MethodPost, "/products/api/generate-presigned-url/", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
