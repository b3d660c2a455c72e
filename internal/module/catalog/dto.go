package catalog

import (
	"time"

	"github.com/google/uuid"
)

// CreateProductRequest represents a request to create a product. Asset
// fields carry object keys from presigned uploads, never file bytes.
type CreateProductRequest struct {
	Name          string      `json:"name" binding:"required"`
	Type          ProductType `json:"type"`
	CategoryID    *uuid.UUID  `json:"category" binding:"omitempty"`
	SubCategoryID *uuid.UUID  `json:"sub_category" binding:"omitempty"`
	SubjectID     *uuid.UUID  `json:"subject" binding:"omitempty"`
	TeacherID     *uuid.UUID  `json:"teacher" binding:"omitempty"`
	Price         *float64    `json:"price" binding:"omitempty,gte=0"`
	Description   string      `json:"description" binding:"omitempty,max=1000"`
	Year          string      `json:"year"`
	PDFFile       string      `json:"pdf_file"`
	BaseImage     string      `json:"base_image"`
	PageCount     *int        `json:"page_count" binding:"omitempty,gte=0"`
	FileSizeMB    *float64    `json:"file_size_mb" binding:"omitempty,gte=0"`
	Language      Language    `json:"language"`
	IsAvailable   *bool       `json:"is_available"`
}

// UpdateProductRequest represents a partial product update. Nil fields are
// left untouched; asset fields carry object keys.
type UpdateProductRequest struct {
	Name          *string      `json:"name"`
	Type          *ProductType `json:"type"`
	CategoryID    *uuid.UUID   `json:"category"`
	SubCategoryID *uuid.UUID   `json:"sub_category"`
	SubjectID     *uuid.UUID   `json:"subject"`
	TeacherID     *uuid.UUID   `json:"teacher"`
	Price         *float64     `json:"price" binding:"omitempty,gte=0"`
	Description   *string      `json:"description" binding:"omitempty,max=1000"`
	Year          *string      `json:"year"`
	PDFFile       *string      `json:"pdf_file"`
	BaseImage     *string      `json:"base_image"`
	PageCount     *int         `json:"page_count" binding:"omitempty,gte=0"`
	FileSizeMB    *float64     `json:"file_size_mb" binding:"omitempty,gte=0"`
	Language      *Language    `json:"language"`
	IsAvailable   *bool        `json:"is_available"`
}

// ProductFilter represents filters for listing products.
type ProductFilter struct {
	CategoryID  *uuid.UUID `form:"category"`
	SubjectID   *uuid.UUID `form:"subject"`
	TeacherID   *uuid.UUID `form:"teacher"`
	Type        *ProductType `form:"type"`
	IsAvailable *bool      `form:"is_available"`
	Search      string     `form:"search"`
}

// Pagination represents pagination parameters.
type Pagination struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// NewPagination creates pagination with defaults.
func NewPagination() *Pagination {
	return &Pagination{
		Page:     1,
		PageSize: 20,
	}
}

// Offset returns the offset for database queries.
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ProductResponse represents a product in API responses. Asset fields are
// rendered as public URLs.
type ProductResponse struct {
	ID            uuid.UUID              `json:"id"`
	ProductNumber string                 `json:"product_number"`
	Name          string                 `json:"name"`
	Type          ProductType            `json:"type"`
	CategoryID    *uuid.UUID             `json:"category_id,omitempty"`
	SubCategoryID *uuid.UUID             `json:"sub_category_id,omitempty"`
	SubjectID     *uuid.UUID             `json:"subject_id,omitempty"`
	TeacherID     *uuid.UUID             `json:"teacher_id,omitempty"`
	Price         *float64               `json:"price,omitempty"`
	Description   string                 `json:"description,omitempty"`
	Year          string                 `json:"year,omitempty"`
	PDFFile       string                 `json:"pdf_file,omitempty"`
	BaseImage     string                 `json:"base_image,omitempty"`
	PageCount     *int                   `json:"page_count,omitempty"`
	FileSizeMB    *float64               `json:"file_size_mb,omitempty"`
	Language      Language               `json:"language"`
	IsAvailable   bool                   `json:"is_available"`
	CreatedAt     time.Time              `json:"created_at"`
	Images        []ProductImageResponse `json:"images"`
}

// ProductImageResponse represents a product image in API responses.
type ProductImageResponse struct {
	ID        uuid.UUID `json:"id"`
	Product   uuid.UUID `json:"product"`
	Image     string    `json:"image"` // public URL
	SortOrder int       `json:"sort_order"`
}

// ProductListResponse represents a paginated product list.
type ProductListResponse struct {
	Products []*ProductResponse `json:"products"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// BulkImageItem is one element of a bulk image bind request.
type BulkImageItem struct {
	ObjectKey string `json:"object_key"`
}

// BulkImageUploadRequest represents a request to bind uploaded image keys to
// a product in one batch.
type BulkImageUploadRequest struct {
	Product uuid.UUID       `json:"product" binding:"required"`
	Images  []BulkImageItem `json:"images" binding:"required"`
}

// DownloadResponse represents a presigned download grant for a product PDF.
type DownloadResponse struct {
	Success   bool      `json:"success"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateCategoryRequest represents a request to create a category.
type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Image string `json:"image"` // object key
}

// CreateSubCategoryRequest represents a request to create a sub-category.
type CreateSubCategoryRequest struct {
	Name       string    `json:"name" binding:"required"`
	CategoryID uuid.UUID `json:"category" binding:"required"`
}

// CreateSubjectRequest represents a request to create a subject.
type CreateSubjectRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateTeacherRequest represents a request to create a teacher.
type CreateTeacherRequest struct {
	Name      string     `json:"name" binding:"required"`
	Bio       string     `json:"bio"`
	Image     string     `json:"image"` // object key
	SubjectID *uuid.UUID `json:"subject"`
	Facebook  string     `json:"facebook"`
	YouTube   string     `json:"youtube"`
	Website   string     `json:"website"`
}

// CategoryResponse represents a category in API responses.
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"` // public URL
	CreatedAt time.Time `json:"created_at"`
}

// TeacherResponse represents a teacher in API responses.
type TeacherResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Bio       string     `json:"bio,omitempty"`
	Image     string     `json:"image,omitempty"` // public URL
	SubjectID *uuid.UUID `json:"subject_id,omitempty"`
	Facebook  string     `json:"facebook,omitempty"`
	YouTube   string     `json:"youtube,omitempty"`
	Website   string     `json:"website,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
