package catalog

import (
	"errors"
	"net/http"

	apperrors "github.com/easystream/server/internal/shared/errors"
	"github.com/easystream/server/internal/shared/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles catalog HTTP requests.
type Handler struct {
	service *Service
}

// NewHandler creates a new catalog handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterAPIRoutes registers the public read endpoints.
func (h *Handler) RegisterAPIRoutes(r *gin.RouterGroup) {
	r.GET("/products/", h.ListProducts)
	r.GET("/products/:id/", h.GetProduct)
	r.GET("/products/:id/download/", h.DownloadPDF)
	r.GET("/categories/", h.ListCategories)
	r.GET("/sub-categories/", h.ListSubCategories)
	r.GET("/subjects/", h.ListSubjects)
	r.GET("/teachers/", h.ListTeachers)
}

// RegisterDashboardRoutes registers the admin write endpoints.
func (h *Handler) RegisterDashboardRoutes(r *gin.RouterGroup) {
	r.POST("/products/", h.CreateProduct)
	r.PUT("/products/:id/", h.UpdateProduct)
	r.DELETE("/products/:id/", h.DeleteProduct)
	r.POST("/product-images/bulk-upload-s3/", h.BulkUploadImages)
	r.DELETE("/product-images/:id/", h.DeleteProductImage)
	r.POST("/categories/", h.CreateCategory)
	r.POST("/sub-categories/", h.CreateSubCategory)
	r.POST("/subjects/", h.CreateSubject)
	r.POST("/teachers/", h.CreateTeacher)
}

// CreateProduct creates a product
// @Summary Create product
// @Description Creates a product; pdf_file and base_image carry object keys from presigned uploads
// @Tags dashboard
// @Accept json
// @Produce json
// @Param request body CreateProductRequest true "Product payload"
// @Success 201 {object} ProductResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /products/dashboard/products/ [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		response.AppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct updates a product
// @Summary Update product
// @Tags dashboard
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body UpdateProductRequest true "Fields to update"
// @Success 200 {object} ProductResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /products/dashboard/products/{id}/ [put]
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// GetProduct returns one product
// @Summary Get product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /products/api/products/{id}/ [get]
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// ListProducts returns a filtered product list
// @Summary List products
// @Tags products
// @Produce json
// @Param category query string false "Category ID"
// @Param subject query string false "Subject ID"
// @Param teacher query string false "Teacher ID"
// @Param type query string false "Product type" Enums(book, package)
// @Param search query string false "Name search"
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} ProductListResponse
// @Router /products/api/products/ [get]
func (h *Handler) ListProducts(c *gin.Context) {
	var filter ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pagination := NewPagination()
	if err := c.ShouldBindQuery(pagination); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	list, err := h.service.ListProducts(c.Request.Context(), &filter, pagination)
	if err != nil {
		response.AppError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// DeleteProduct deletes a product
// @Summary Delete product
// @Tags dashboard
// @Param id path string true "Product ID"
// @Success 204
// @Failure 404 {object} response.ErrorResponse
// @Router /products/dashboard/products/{id}/ [delete]
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// BulkUploadImages binds uploaded image keys to a product
// @Summary Bulk bind product images
// @Description Binds a batch of uploaded object keys to a product; all element failures are reported together
// @Tags dashboard
// @Accept json
// @Produce json
// @Param request body BulkImageUploadRequest true "Product and image keys"
// @Success 201 {array} ProductImageResponse
// @Failure 400 {object} map[string][]string
// @Router /products/dashboard/product-images/bulk-upload-s3/ [post]
func (h *Handler) BulkUploadImages(c *gin.Context) {
	var req BulkImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	images, err := h.service.BulkBindImages(c.Request.Context(), &req)
	if err != nil {
		var bulkErr *BulkError
		if errors.As(err, &bulkErr) {
			c.JSON(http.StatusBadRequest, bulkErr.Fields)
			return
		}
		response.AppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, images)
}

// DeleteProductImage deletes one product image record
// @Summary Delete product image
// @Tags dashboard
// @Param id path string true "Image ID"
// @Success 204
// @Failure 404 {object} response.ErrorResponse
// @Router /products/dashboard/product-images/{id}/ [delete]
func (h *Handler) DeleteProductImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProductImage(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DownloadPDF presigns a download for a product PDF
// @Summary Download product PDF
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} DownloadResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /products/api/products/{id}/download/ [get]
func (h *Handler) DownloadPDF(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	grant, err := h.service.DownloadPDF(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, DownloadResponse{
		Success:   true,
		URL:       grant.URL,
		ExpiresAt: grant.ExpiresAt,
	})
}

// CreateCategory creates a category
// @Summary Create category
// @Tags dashboard
// @Accept json
// @Produce json
// @Param request body CreateCategoryRequest true "Category payload"
// @Success 201 {object} CategoryResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /products/dashboard/categories/ [post]
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.service.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		response.AppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// ListCategories returns all categories
// @Summary List categories
// @Tags catalog
// @Produce json
// @Success 200 {array} CategoryResponse
// @Router /products/api/categories/ [get]
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		response.AppError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CreateSubCategory creates a sub-category
// @Summary Create sub-category
// @Tags dashboard
// @Accept json
// @Produce json
// @Param request body CreateSubCategoryRequest true "Sub-category payload"
// @Success 201 {object} SubCategory
// @Failure 400 {object} response.ErrorResponse
// @Router /products/dashboard/sub-categories/ [post]
func (h *Handler) CreateSubCategory(c *gin.Context) {
	var req CreateSubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	subCategory, err := h.service.CreateSubCategory(c.Request.Context(), &req)
	if err != nil {
		response.AppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subCategory)
}

// ListSubCategories returns sub-categories, optionally filtered by category
// @Summary List sub-categories
// @Tags catalog
// @Produce json
// @Param category query string false "Category ID"
// @Success 200 {array} SubCategory
// @Router /products/api/sub-categories/ [get]
func (h *Handler) ListSubCategories(c *gin.Context) {
	var categoryID *uuid.UUID
	if raw := c.Query("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid category id")
			return
		}
		categoryID = &id
	}

	subCategories, err := h.service.ListSubCategories(c.Request.Context(), categoryID)
	if err != nil {
		response.AppError(c, err)
		return
	}
	c.JSON(http.StatusOK, subCategories)
}

// CreateSubject creates a subject
// @Summary Create subject
// @Tags dashboard
// @Accept json
// @Produce json
// @Param request body CreateSubjectRequest true "Subject payload"
// @Success 201 {object} Subject
// @Failure 400 {object} response.ErrorResponse
// @Router /products/dashboard/subjects/ [post]
func (h *Handler) CreateSubject(c *gin.Context) {
	var req CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	subject, err := h.service.CreateSubject(c.Request.Context(), &req)
	if err != nil {
		response.AppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subject)
}

// ListSubjects returns all subjects
// @Summary List subjects
// @Tags catalog
// @Produce json
// @Success 200 {array} Subject
// @Router /products/api/subjects/ [get]
func (h *Handler) ListSubjects(c *gin.Context) {
	subjects, err := h.service.ListSubjects(c.Request.Context())
	if err != nil {
		response.AppError(c, err)
		return
	}
	c.JSON(http.StatusOK, subjects)
}

// CreateTeacher creates a teacher
// @Summary Create teacher
// @Tags dashboard
// @Accept json
// @Produce json
// @Param request body CreateTeacherRequest true "Teacher payload"
// @Success 201 {object} TeacherResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /products/dashboard/teachers/ [post]
func (h *Handler) CreateTeacher(c *gin.Context) {
	var req CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	teacher, err := h.service.CreateTeacher(c.Request.Context(), &req)
	if err != nil {
		response.AppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, teacher)
}

// ListTeachers returns all teachers
// @Summary List teachers
// @Tags catalog
// @Produce json
// @Success 200 {array} TeacherResponse
// @Router /products/api/teachers/ [get]
func (h *Handler) ListTeachers(c *gin.Context) {
	teachers, err := h.service.ListTeachers(c.Request.Context())
	if err != nil {
		response.AppError(c, err)
		return
	}
	c.JSON(http.StatusOK, teachers)
}

// renderError maps catalog sentinels to responses before falling back to the
// shared app-error renderer.
func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrProductImageNotFound):
		response.AppError(c, apperrors.NotFound("product"))
	case errors.Is(err, ErrNoPDFFile):
		response.AppError(c, apperrors.NotFound("pdf_file"))
	default:
		response.AppError(c, err)
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
