package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/easystream/server/internal/module/storage"
	apperrors "github.com/easystream/server/internal/shared/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRepository is an in-memory Repository for service tests.
type fakeRepository struct {
	products      map[uuid.UUID]*Product
	images        []ProductImage
	categories    map[uuid.UUID]*Category
	subCategories map[uuid.UUID]*SubCategory
	subjects      map[uuid.UUID]*Subject
	teachers      map[uuid.UUID]*Teacher

	createImagesCalls int
	failCreateImages  error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		products:      make(map[uuid.UUID]*Product),
		categories:    make(map[uuid.UUID]*Category),
		subCategories: make(map[uuid.UUID]*SubCategory),
		subjects:      make(map[uuid.UUID]*Subject),
		teachers:      make(map[uuid.UUID]*Teacher),
	}
}

func (f *fakeRepository) CreateProduct(_ context.Context, product *Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = time.Now()
	f.products[product.ID] = product
	return nil
}

func (f *fakeRepository) GetProduct(_ context.Context, id uuid.UUID) (*Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	copied := *product
	for _, img := range f.images {
		if img.ProductID == id {
			copied.Images = append(copied.Images, img)
		}
	}
	return &copied, nil
}

func (f *fakeRepository) ListProducts(_ context.Context, _ *ProductFilter, _ *Pagination) ([]*Product, int64, error) {
	var out []*Product
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepository) UpdateProduct(_ context.Context, product *Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeRepository) DeleteProduct(_ context.Context, id uuid.UUID) error {
	if _, ok := f.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeRepository) ProductExists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.products[id]
	return ok, nil
}

func (f *fakeRepository) CreateProductImages(_ context.Context, productID uuid.UUID, keys []string) ([]ProductImage, error) {
	f.createImagesCalls++
	if f.failCreateImages != nil {
		return nil, f.failCreateImages
	}
	if _, ok := f.products[productID]; !ok {
		return nil, ErrProductNotFound
	}

	next := 0
	for _, img := range f.images {
		if img.ProductID == productID && img.SortOrder >= next {
			next = img.SortOrder + 1
		}
	}

	created := make([]ProductImage, len(keys))
	for i, key := range keys {
		created[i] = ProductImage{
			ID:        uuid.New(),
			ProductID: productID,
			Image:     key,
			SortOrder: next + i,
		}
	}
	f.images = append(f.images, created...)
	return created, nil
}

func (f *fakeRepository) DeleteProductImage(_ context.Context, id uuid.UUID) error {
	for i, img := range f.images {
		if img.ID == id {
			f.images = append(f.images[:i], f.images[i+1:]...)
			return nil
		}
	}
	return ErrProductImageNotFound
}

func (f *fakeRepository) CreateCategory(_ context.Context, category *Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	f.categories[category.ID] = category
	return nil
}

func (f *fakeRepository) ListCategories(_ context.Context) ([]*Category, error) {
	var out []*Category
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeRepository) CategoryExists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.categories[id]
	return ok, nil
}

func (f *fakeRepository) CreateSubCategory(_ context.Context, subCategory *SubCategory) error {
	if subCategory.ID == uuid.Nil {
		subCategory.ID = uuid.New()
	}
	f.subCategories[subCategory.ID] = subCategory
	return nil
}

func (f *fakeRepository) ListSubCategories(_ context.Context, _ *uuid.UUID) ([]*SubCategory, error) {
	var out []*SubCategory
	for _, sc := range f.subCategories {
		out = append(out, sc)
	}
	return out, nil
}

func (f *fakeRepository) SubCategoryExists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.subCategories[id]
	return ok, nil
}

func (f *fakeRepository) CreateSubject(_ context.Context, subject *Subject) error {
	if subject.ID == uuid.Nil {
		subject.ID = uuid.New()
	}
	f.subjects[subject.ID] = subject
	return nil
}

func (f *fakeRepository) ListSubjects(_ context.Context) ([]*Subject, error) {
	var out []*Subject
	for _, s := range f.subjects {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeRepository) SubjectExists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.subjects[id]
	return ok, nil
}

func (f *fakeRepository) CreateTeacher(_ context.Context, teacher *Teacher) error {
	if teacher.ID == uuid.Nil {
		teacher.ID = uuid.New()
	}
	f.teachers[teacher.ID] = teacher
	return nil
}

func (f *fakeRepository) ListTeachers(_ context.Context) ([]*Teacher, error) {
	var out []*Teacher
	for _, tc := range f.teachers {
		out = append(out, tc)
	}
	return out, nil
}

func (f *fakeRepository) TeacherExists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.teachers[id]
	return ok, nil
}

// noopSigner satisfies storage.Signer for tests that never presign.
type noopSigner struct{}

func (noopSigner) PresignUpload(_ context.Context, key, _ string, expiry time.Duration) (*storage.PresignedRequest, error) {
	return &storage.PresignedRequest{
		URL:       "https://bucket.example.com/" + key,
		Method:    "PUT",
		ExpiresAt: time.Now().Add(expiry),
	}, nil
}

func (noopSigner) PresignDownload(_ context.Context, key string, expiry time.Duration) (*storage.PresignedRequest, error) {
	return &storage.PresignedRequest{
		URL:       "https://bucket.example.com/" + key + "?X-Amz-Signature=abc",
		Method:    "GET",
		ExpiresAt: time.Now().Add(expiry),
	}, nil
}

func newTestService(repo Repository) *Service {
	storageSvc := storage.NewService(noopSigner{}, &storage.ServiceConfig{
		PublicDomain: "cdn.example.com",
		Expiry:       time.Hour,
	}, zap.NewNop(), nil)
	return NewService(repo, storageSvc, nil, zap.NewNop(), nil)
}

func TestService_CreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("binds asset keys and resolves public urls", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestService(repo)

		resp, err := svc.CreateProduct(ctx, &CreateProductRequest{
			Name:      "الرياضيات للصف الثالث",
			PDFFile:   "pdfs/abc.pdf",
			BaseImage: "products/def.jpg",
		})
		require.NoError(t, err)

		assert.Equal(t, "https://cdn.example.com/pdfs/abc.pdf", resp.PDFFile)
		assert.Equal(t, "https://cdn.example.com/products/def.jpg", resp.BaseImage)
		assert.True(t, strings.HasPrefix(resp.ProductNumber, "PRD-"))

		// The row stores the raw key, not the resolved URL.
		stored := repo.products[resp.ID]
		assert.Equal(t, "pdfs/abc.pdf", stored.PDFFile)
		assert.Equal(t, "products/def.jpg", stored.BaseImage)
	})

	t.Run("defaults", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestService(repo)

		resp, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "كتاب"})
		require.NoError(t, err)
		assert.Equal(t, ProductTypeBook, resp.Type)
		assert.Equal(t, LanguageArabic, resp.Language)
		assert.True(t, resp.IsAvailable)
	})

	t.Run("pdf key under wrong prefix", func(t *testing.T) {
		svc := newTestService(newFakeRepository())

		_, err := svc.CreateProduct(ctx, &CreateProductRequest{
			Name:    "كتاب",
			PDFFile: "products/abc.pdf",
		})

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.CodeCategoryMismatch, appErr.Code)
		assert.Equal(t, "pdf_file", appErr.Field)
	})

	t.Run("image key under wrong prefix", func(t *testing.T) {
		svc := newTestService(newFakeRepository())

		_, err := svc.CreateProduct(ctx, &CreateProductRequest{
			Name:      "كتاب",
			BaseImage: "pdfs/abc.jpg",
		})

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.CodeCategoryMismatch, appErr.Code)
		assert.Equal(t, "base_image", appErr.Field)
	})

	t.Run("unknown reference id", func(t *testing.T) {
		svc := newTestService(newFakeRepository())
		missing := uuid.New()

		_, err := svc.CreateProduct(ctx, &CreateProductRequest{
			Name:       "كتاب",
			CategoryID: &missing,
		})

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
	})

	t.Run("invalid type", func(t *testing.T) {
		svc := newTestService(newFakeRepository())

		badType := ProductType("magazine")
		_, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "كتاب", Type: badType})

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.CodeInvalidEnum, appErr.Code)
	})
}

func TestService_UpdateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("re-validates replaced asset keys", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestService(repo)

		created, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "كتاب"})
		require.NoError(t, err)

		badKey := "uploads/abc.pdf"
		_, err = svc.UpdateProduct(ctx, created.ID, &UpdateProductRequest{PDFFile: &badKey})

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.CodeCategoryMismatch, appErr.Code)

		goodKey := "pdfs/abc.pdf"
		updated, err := svc.UpdateProduct(ctx, created.ID, &UpdateProductRequest{PDFFile: &goodKey})
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/pdfs/abc.pdf", updated.PDFFile)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc := newTestService(newFakeRepository())

		name := "جديد"
		_, err := svc.UpdateProduct(ctx, uuid.New(), &UpdateProductRequest{Name: &name})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestService_BulkBindImages(t *testing.T) {
	ctx := context.Background()

	newProduct := func(t *testing.T, repo *fakeRepository) uuid.UUID {
		t.Helper()
		product := &Product{Name: "كتاب", Type: ProductTypeBook}
		require.NoError(t, repo.CreateProduct(ctx, product))
		return product.ID
	}

	t.Run("binds batch preserving input order", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestService(repo)
		productID := newProduct(t, repo)

		resp, err := svc.BulkBindImages(ctx, &BulkImageUploadRequest{
			Product: productID,
			Images: []BulkImageItem{
				{ObjectKey: "products/a.jpg"},
				{ObjectKey: "products/b.jpg"},
				{ObjectKey: "products/c.jpg"},
			},
		})
		require.NoError(t, err)
		require.Len(t, resp, 3)

		assert.Equal(t, "https://cdn.example.com/products/a.jpg", resp[0].Image)
		assert.Equal(t, "https://cdn.example.com/products/b.jpg", resp[1].Image)
		assert.Equal(t, "https://cdn.example.com/products/c.jpg", resp[2].Image)
		assert.Equal(t, 0, resp[0].SortOrder)
		assert.Equal(t, 1, resp[1].SortOrder)
		assert.Equal(t, 2, resp[2].SortOrder)
	})

	t.Run("appends after existing images", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestService(repo)
		productID := newProduct(t, repo)

		_, err := svc.BulkBindImages(ctx, &BulkImageUploadRequest{
			Product: productID,
			Images:  []BulkImageItem{{ObjectKey: "products/a.jpg"}},
		})
		require.NoError(t, err)

		resp, err := svc.BulkBindImages(ctx, &BulkImageUploadRequest{
			Product: productID,
			Images:  []BulkImageItem{{ObjectKey: "products/b.jpg"}},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, resp[0].SortOrder)
	})

	t.Run("missing key at index reported and nothing persists", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestService(repo)
		productID := newProduct(t, repo)

		_, err := svc.BulkBindImages(ctx, &BulkImageUploadRequest{
			Product: productID,
			Images: []BulkImageItem{
				{ObjectKey: "products/a.jpg"},
				{ObjectKey: ""},
				{ObjectKey: "products/c.jpg"},
			},
		})

		var bulkErr *BulkError
		require.ErrorAs(t, err, &bulkErr)
		require.Contains(t, bulkErr.Fields, "images")
		assert.Contains(t, bulkErr.Fields["images"], "Image at index 1 is missing 'object_key'")

		assert.Zero(t, repo.createImagesCalls, "no partial persistence on validation failure")
		assert.Empty(t, repo.images)
	})

	t.Run("all failures reported together", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestService(repo)

		_, err := svc.BulkBindImages(ctx, &BulkImageUploadRequest{
			Product: uuid.New(), // unknown product
			Images: []BulkImageItem{
				{ObjectKey: ""},
				{ObjectKey: "pdfs/wrong.jpg"},
			},
		})

		var bulkErr *BulkError
		require.ErrorAs(t, err, &bulkErr)
		assert.Contains(t, bulkErr.Fields, "product")
		require.Len(t, bulkErr.Fields["images"], 2)
		assert.Contains(t, bulkErr.Fields["images"][0], "index 0")
		assert.Contains(t, bulkErr.Fields["images"][1], "index 1")
	})

	t.Run("empty image list", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestService(repo)
		productID := newProduct(t, repo)

		_, err := svc.BulkBindImages(ctx, &BulkImageUploadRequest{Product: productID})

		var bulkErr *BulkError
		require.ErrorAs(t, err, &bulkErr)
		assert.Contains(t, bulkErr.Fields, "images")
	})

	t.Run("repository failure surfaces", func(t *testing.T) {
		repo := newFakeRepository()
		repo.failCreateImages = errors.New("tx aborted")
		svc := newTestService(repo)
		productID := newProduct(t, repo)

		_, err := svc.BulkBindImages(ctx, &BulkImageUploadRequest{
			Product: productID,
			Images:  []BulkImageItem{{ObjectKey: "products/a.jpg"}},
		})
		require.Error(t, err)

		var bulkErr *BulkError
		assert.False(t, errors.As(err, &bulkErr), "infrastructure failures are not bulk errors")
	})
}

func TestService_DownloadPDF(t *testing.T) {
	ctx := context.Background()

	t.Run("presigns the stored pdf key", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestService(repo)

		created, err := svc.CreateProduct(ctx, &CreateProductRequest{
			Name:    "كتاب",
			PDFFile: "pdfs/abc.pdf",
		})
		require.NoError(t, err)

		grant, err := svc.DownloadPDF(ctx, created.ID)
		require.NoError(t, err)
		assert.Contains(t, grant.URL, "pdfs/abc.pdf")
		assert.Contains(t, grant.URL, "X-Amz-Signature")
	})

	t.Run("product without pdf", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestService(repo)

		created, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "كتاب"})
		require.NoError(t, err)

		_, err = svc.DownloadPDF(ctx, created.ID)
		assert.ErrorIs(t, err, ErrNoPDFFile)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc := newTestService(newFakeRepository())
		_, err := svc.DownloadPDF(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestService_ReferenceEntities(t *testing.T) {
	ctx := context.Background()

	t.Run("category image must be an image key", func(t *testing.T) {
		svc := newTestService(newFakeRepository())

		_, err := svc.CreateCategory(ctx, &CreateCategoryRequest{
			Name:  "علمي",
			Image: "pdfs/abc.jpg",
		})

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.CodeCategoryMismatch, appErr.Code)
	})

	t.Run("sub-category requires existing category", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestService(repo)

		_, err := svc.CreateSubCategory(ctx, &CreateSubCategoryRequest{
			Name:       "فيزياء",
			CategoryID: uuid.New(),
		})
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)

		category, err := svc.CreateCategory(ctx, &CreateCategoryRequest{Name: "علمي"})
		require.NoError(t, err)

		subCategory, err := svc.CreateSubCategory(ctx, &CreateSubCategoryRequest{
			Name:       "فيزياء",
			CategoryID: category.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, category.ID, subCategory.CategoryID)
	})

	t.Run("teacher image resolves to public url", func(t *testing.T) {
		svc := newTestService(newFakeRepository())

		teacher, err := svc.CreateTeacher(ctx, &CreateTeacherRequest{
			Name:  "أحمد",
			Image: "products/t.jpg",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/products/t.jpg", teacher.Image)
	})
}

func TestGenerateProductNumber(t *testing.T) {
	now := time.Now()
	number := generateProductNumber()

	assert.True(t, strings.HasPrefix(number, fmt.Sprintf("PRD-%s-", now.Format("20060102"))), number)
	assert.Len(t, number, len("PRD-20060102-")+6)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		n := generateProductNumber()
		assert.False(t, seen[n])
		seen[n] = true
	}
}
