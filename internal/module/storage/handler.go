package storage

import (
	"net/http"
	"time"

	"github.com/easystream/server/internal/shared/response"
	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for upload grants.
type Handler struct {
	service *Service
}

// NewHandler creates a new storage handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers upload grant routes on an authenticated group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/generate-presigned-url/", h.GeneratePresignedURL)
}

// GeneratePresignedURL issues a presigned upload grant.
//
//	@Summary		Generate presigned upload URL
//	@Description	Issue a time-boxed URL for uploading a file directly to object storage
//	@Tags			Upload
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		GeneratePresignedURLRequest	true	"Upload grant request"
//	@Success		200		{object}	GeneratePresignedURLResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Router			/products/api/generate-presigned-url/ [post]
func (h *Handler) GeneratePresignedURL(c *gin.Context) {
	var req GeneratePresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	grant, err := h.service.IssueUploadGrant(c.Request.Context(), req.FileName, req.FileType, req.FileCategory)
	if err != nil {
		response.AppError(c, err)
		return
	}

	c.JSON(http.StatusOK, GeneratePresignedURLResponse{
		Success:   true,
		URL:       grant.URL,
		PublicURL: grant.PublicURL,
		ObjectKey: grant.ObjectKey,
		FileType:  grant.FileType,
		ExpiresAt: grant.ExpiresAt.Format(time.RFC3339),
	})
}
