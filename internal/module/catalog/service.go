package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/easystream/server/internal/module/storage"
	apperrors "github.com/easystream/server/internal/shared/errors"
	"github.com/easystream/server/internal/shared/locale"
	"github.com/easystream/server/internal/shared/metrics"
	"github.com/easystream/server/internal/shared/random"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service implements catalog operations, including the reconciliation of
// client-uploaded object keys into catalog asset fields. Binding is
// optimistic by default: the server never observes the upload, so the key's
// namespace prefix is the integrity check. With a Verifier configured the
// service additionally probes object existence before committing.
type Service struct {
	repo     Repository
	storage  *storage.Service
	verifier *storage.Verifier // nil means fast-bind
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewService creates a new catalog service.
func NewService(repo Repository, storageSvc *storage.Service, verifier *storage.Verifier, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:     repo,
		storage:  storageSvc,
		verifier: verifier,
		logger:   logger,
		metrics:  m,
	}
}

// --- Product Operations ---

// CreateProduct validates and persists a product. Asset fields arrive as
// object keys from presigned uploads and are stored verbatim.
func (s *Service) CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductResponse, error) {
	if req.Type == "" {
		req.Type = ProductTypeBook
	}
	if !req.Type.Valid() {
		return nil, apperrors.InvalidEnum("type", []string{string(ProductTypeBook), string(ProductTypePackage)})
	}
	if req.Language == "" {
		req.Language = LanguageArabic
	}

	if err := s.validateAssetKey(ctx, "pdf_file", req.PDFFile, storage.CategoryPDF); err != nil {
		return nil, err
	}
	if err := s.validateAssetKey(ctx, "base_image", req.BaseImage, storage.CategoryImage); err != nil {
		return nil, err
	}
	if err := s.validateReferences(ctx, req.CategoryID, req.SubCategoryID, req.SubjectID, req.TeacherID); err != nil {
		return nil, err
	}

	product := &Product{
		ProductNumber: generateProductNumber(),
		Name:          req.Name,
		Type:          req.Type,
		CategoryID:    req.CategoryID,
		SubCategoryID: req.SubCategoryID,
		SubjectID:     req.SubjectID,
		TeacherID:     req.TeacherID,
		Price:         req.Price,
		Description:   req.Description,
		Year:          req.Year,
		PDFFile:       req.PDFFile,
		BaseImage:     req.BaseImage,
		PageCount:     req.PageCount,
		FileSizeMB:    req.FileSizeMB,
		Language:      req.Language,
		IsAvailable:   true,
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		s.recordReconciliation("product", "error")
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.recordReconciliation("product", "ok")
	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.Bool("has_pdf", product.PDFFile != ""),
		zap.Bool("has_image", product.BaseImage != ""),
	)

	return s.toProductResponse(product), nil
}

// UpdateProduct applies a partial update. Asset keys are re-validated
// whenever the client supplies them.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PDFFile != nil {
		if err := s.validateAssetKey(ctx, "pdf_file", *req.PDFFile, storage.CategoryPDF); err != nil {
			return nil, err
		}
		product.PDFFile = *req.PDFFile
	}
	if req.BaseImage != nil {
		if err := s.validateAssetKey(ctx, "base_image", *req.BaseImage, storage.CategoryImage); err != nil {
			return nil, err
		}
		product.BaseImage = *req.BaseImage
	}
	if err := s.validateReferences(ctx, req.CategoryID, req.SubCategoryID, req.SubjectID, req.TeacherID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return nil, apperrors.InvalidEnum("type", []string{string(ProductTypeBook), string(ProductTypePackage)})
		}
		product.Type = *req.Type
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.SubCategoryID != nil {
		product.SubCategoryID = req.SubCategoryID
	}
	if req.SubjectID != nil {
		product.SubjectID = req.SubjectID
	}
	if req.TeacherID != nil {
		product.TeacherID = req.TeacherID
	}
	if req.Price != nil {
		product.Price = req.Price
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Year != nil {
		product.Year = *req.Year
	}
	if req.PageCount != nil {
		product.PageCount = req.PageCount
	}
	if req.FileSizeMB != nil {
		product.FileSizeMB = req.FileSizeMB
	}
	if req.Language != nil {
		product.Language = *req.Language
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		s.recordReconciliation("product", "error")
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.recordReconciliation("product", "ok")
	return s.toProductResponse(product), nil
}

// GetProduct returns one product with resolved asset URLs.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toProductResponse(product), nil
}

// ListProducts returns a filtered, paginated product list.
func (s *Service) ListProducts(ctx context.Context, filter *ProductFilter, pagination *Pagination) (*ProductListResponse, error) {
	products, total, err := s.repo.ListProducts(ctx, filter, pagination)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = s.toProductResponse(p)
	}

	return &ProductListResponse{
		Products: responses,
		Total:    total,
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	}, nil
}

// DeleteProduct deletes a product. Stored objects are left in place;
// cleanup of unreferenced objects is a storage lifecycle concern.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteProduct(ctx, id)
}

// --- Bulk Image Reconciliation ---

// BulkBindImages binds an ordered list of uploaded image keys to a product.
// Every element-level failure is collected before giving up so the client
// can correct all problems in one round-trip. On success the whole batch
// commits in one transaction and result order equals input order.
func (s *Service) BulkBindImages(ctx context.Context, req *BulkImageUploadRequest) ([]ProductImageResponse, error) {
	bulkErr := &BulkError{}

	exists, err := s.repo.ProductExists(ctx, req.Product)
	if err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		bulkErr.Add("product", fmt.Sprintf("product %q not found", req.Product))
	}

	if len(req.Images) == 0 {
		bulkErr.Add("images", "at least one image is required")
	}

	keys := make([]string, 0, len(req.Images))
	for i, img := range req.Images {
		if img.ObjectKey == "" {
			bulkErr.Add("images", locale.BulkImageMissingKey(i))
			continue
		}
		if !storage.KeyInCategory(img.ObjectKey, storage.CategoryImage) {
			bulkErr.Add("images", locale.BulkImageBadPrefix(i, storage.CategoryImage.Prefix()))
			continue
		}
		if s.verifier != nil {
			stored, err := s.verifier.Exists(ctx, img.ObjectKey)
			if err != nil {
				return nil, apperrors.StorageUnavailable(err)
			}
			if !stored {
				bulkErr.Add("images", fmt.Sprintf("Image at index %d does not exist in storage", i))
				continue
			}
		}
		keys = append(keys, img.ObjectKey)
	}

	if bulkErr.HasErrors() {
		s.recordReconciliation("bulk_images", "rejected")
		return nil, bulkErr
	}

	images, err := s.repo.CreateProductImages(ctx, req.Product, keys)
	if err != nil {
		s.recordReconciliation("bulk_images", "error")
		return nil, fmt.Errorf("create product images: %w", err)
	}

	s.recordReconciliation("bulk_images", "ok")
	if s.metrics != nil {
		s.metrics.BulkImagesBoundTotal.Add(float64(len(images)))
	}
	s.logger.Info("bulk images bound",
		zap.String("product_id", req.Product.String()),
		zap.Int("count", len(images)),
	)

	responses := make([]ProductImageResponse, len(images))
	for i, img := range images {
		responses[i] = s.toImageResponse(&img)
	}
	return responses, nil
}

// DeleteProductImage removes one image record. The stored object is kept.
func (s *Service) DeleteProductImage(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteProductImage(ctx, id)
}

// --- PDF Download ---

// DownloadPDF presigns a GET for a product's PDF. The store is the final
// authority on whether the bytes exist; with a verifier configured a missing
// object is detected here instead of at the client.
func (s *Service) DownloadPDF(ctx context.Context, productID uuid.UUID) (*storage.DownloadGrant, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.PDFFile == "" {
		return nil, ErrNoPDFFile
	}

	if s.verifier != nil {
		stored, err := s.verifier.Exists(ctx, product.PDFFile)
		if err != nil {
			return nil, apperrors.StorageUnavailable(err)
		}
		if !stored {
			return nil, apperrors.AssetMissing(product.PDFFile)
		}
	}

	return s.storage.IssueDownloadGrant(ctx, product.PDFFile)
}

// --- Reference Entities ---

// CreateCategory creates a category; the image field, when present, must be
// an image-category object key.
func (s *Service) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*CategoryResponse, error) {
	if err := s.validateAssetKey(ctx, "image", req.Image, storage.CategoryImage); err != nil {
		return nil, err
	}

	category := &Category{
		Name:  req.Name,
		Image: req.Image,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return s.toCategoryResponse(category), nil
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]*CategoryResponse, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	responses := make([]*CategoryResponse, len(categories))
	for i, c := range categories {
		responses[i] = s.toCategoryResponse(c)
	}
	return responses, nil
}

// CreateSubCategory creates a sub-category under an existing category.
func (s *Service) CreateSubCategory(ctx context.Context, req *CreateSubCategoryRequest) (*SubCategory, error) {
	exists, err := s.repo.CategoryExists(ctx, req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return nil, apperrors.ValidationError(fmt.Sprintf("category %q not found", req.CategoryID))
	}

	subCategory := &SubCategory{
		Name:       req.Name,
		CategoryID: req.CategoryID,
	}
	if err := s.repo.CreateSubCategory(ctx, subCategory); err != nil {
		return nil, fmt.Errorf("create sub-category: %w", err)
	}
	return subCategory, nil
}

// ListSubCategories returns sub-categories, optionally filtered by category.
func (s *Service) ListSubCategories(ctx context.Context, categoryID *uuid.UUID) ([]*SubCategory, error) {
	return s.repo.ListSubCategories(ctx, categoryID)
}

// CreateSubject creates a subject.
func (s *Service) CreateSubject(ctx context.Context, req *CreateSubjectRequest) (*Subject, error) {
	subject := &Subject{Name: req.Name}
	if err := s.repo.CreateSubject(ctx, subject); err != nil {
		return nil, fmt.Errorf("create subject: %w", err)
	}
	return subject, nil
}

// ListSubjects returns all subjects.
func (s *Service) ListSubjects(ctx context.Context) ([]*Subject, error) {
	return s.repo.ListSubjects(ctx)
}

// CreateTeacher creates a teacher.
func (s *Service) CreateTeacher(ctx context.Context, req *CreateTeacherRequest) (*TeacherResponse, error) {
	if err := s.validateAssetKey(ctx, "image", req.Image, storage.CategoryImage); err != nil {
		return nil, err
	}
	if req.SubjectID != nil {
		exists, err := s.repo.SubjectExists(ctx, *req.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("check subject: %w", err)
		}
		if !exists {
			return nil, apperrors.ValidationError(fmt.Sprintf("subject %q not found", *req.SubjectID))
		}
	}

	teacher := &Teacher{
		Name:      req.Name,
		Bio:       req.Bio,
		Image:     req.Image,
		SubjectID: req.SubjectID,
		Facebook:  req.Facebook,
		YouTube:   req.YouTube,
		Website:   req.Website,
	}
	if err := s.repo.CreateTeacher(ctx, teacher); err != nil {
		return nil, fmt.Errorf("create teacher: %w", err)
	}
	return s.toTeacherResponse(teacher), nil
}

// ListTeachers returns all teachers.
func (s *Service) ListTeachers(ctx context.Context) ([]*TeacherResponse, error) {
	teachers, err := s.repo.ListTeachers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	responses := make([]*TeacherResponse, len(teachers))
	for i, t := range teachers {
		responses[i] = s.toTeacherResponse(t)
	}
	return responses, nil
}

// --- Validation Helpers ---

// validateAssetKey enforces the namespace-prefix invariant for one asset
// field and, in verified mode, probes the store for the object. Empty keys
// are allowed; asset fields are optional.
func (s *Service) validateAssetKey(ctx context.Context, field, key string, category storage.UploadCategory) error {
	if key == "" {
		return nil
	}
	if !storage.KeyInCategory(key, category) {
		return apperrors.CategoryMismatch(field, category.Prefix())
	}
	if s.verifier != nil {
		stored, err := s.verifier.Exists(ctx, key)
		if err != nil {
			return apperrors.StorageUnavailable(err)
		}
		if !stored {
			return apperrors.AssetMissing(key)
		}
	}
	return nil
}

func (s *Service) validateReferences(ctx context.Context, categoryID, subCategoryID, subjectID, teacherID *uuid.UUID) error {
	checks := []struct {
		id     *uuid.UUID
		field  string
		exists func(context.Context, uuid.UUID) (bool, error)
	}{
		{categoryID, "category", s.repo.CategoryExists},
		{subCategoryID, "sub_category", s.repo.SubCategoryExists},
		{subjectID, "subject", s.repo.SubjectExists},
		{teacherID, "teacher", s.repo.TeacherExists},
	}

	for _, check := range checks {
		if check.id == nil {
			continue
		}
		exists, err := check.exists(ctx, *check.id)
		if err != nil {
			return fmt.Errorf("check %s: %w", check.field, err)
		}
		if !exists {
			return apperrors.ValidationError(fmt.Sprintf("%s %q not found", check.field, *check.id))
		}
	}
	return nil
}

func (s *Service) recordReconciliation(kind, status string) {
	if s.metrics != nil {
		s.metrics.ReconciliationsTotal.WithLabelValues(kind, status).Inc()
	}
}

// --- Response Builders ---

func (s *Service) toProductResponse(p *Product) *ProductResponse {
	images := make([]ProductImageResponse, len(p.Images))
	for i, img := range p.Images {
		images[i] = s.toImageResponse(&img)
	}

	return &ProductResponse{
		ID:            p.ID,
		ProductNumber: p.ProductNumber,
		Name:          p.Name,
		Type:          p.Type,
		CategoryID:    p.CategoryID,
		SubCategoryID: p.SubCategoryID,
		SubjectID:     p.SubjectID,
		TeacherID:     p.TeacherID,
		Price:         p.Price,
		Description:   p.Description,
		Year:          p.Year,
		PDFFile:       s.storage.PublicURL(p.PDFFile),
		BaseImage:     s.storage.PublicURL(p.BaseImage),
		PageCount:     p.PageCount,
		FileSizeMB:    p.FileSizeMB,
		Language:      p.Language,
		IsAvailable:   p.IsAvailable,
		CreatedAt:     p.CreatedAt,
		Images:        images,
	}
}

func (s *Service) toImageResponse(img *ProductImage) ProductImageResponse {
	return ProductImageResponse{
		ID:        img.ID,
		Product:   img.ProductID,
		Image:     s.storage.PublicURL(img.Image),
		SortOrder: img.SortOrder,
	}
}

func (s *Service) toCategoryResponse(c *Category) *CategoryResponse {
	return &CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Image:     s.storage.PublicURL(c.Image),
		CreatedAt: c.CreatedAt,
	}
}

func (s *Service) toTeacherResponse(t *Teacher) *TeacherResponse {
	return &TeacherResponse{
		ID:        t.ID,
		Name:      t.Name,
		Bio:       t.Bio,
		Image:     s.storage.PublicURL(t.Image),
		SubjectID: t.SubjectID,
		Facebook:  t.Facebook,
		YouTube:   t.YouTube,
		Website:   t.Website,
		CreatedAt: t.CreatedAt,
	}
}

func generateProductNumber() string {
	now := time.Now()
	return fmt.Sprintf("PRD-%s-%s", now.Format("20060102"), random.UpperAlphaNum(6))
}
