package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for catalog data access.
type Repository interface {
	// Product operations
	CreateProduct(ctx context.Context, product *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, filter *ProductFilter, pagination *Pagination) ([]*Product, int64, error)
	UpdateProduct(ctx context.Context, product *Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ProductExists(ctx context.Context, id uuid.UUID) (bool, error)

	// Product image operations
	CreateProductImages(ctx context.Context, productID uuid.UUID, keys []string) ([]ProductImage, error)
	DeleteProductImage(ctx context.Context, id uuid.UUID) error

	// Reference entity operations
	CreateCategory(ctx context.Context, category *Category) error
	ListCategories(ctx context.Context) ([]*Category, error)
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
	CreateSubCategory(ctx context.Context, subCategory *SubCategory) error
	ListSubCategories(ctx context.Context, categoryID *uuid.UUID) ([]*SubCategory, error)
	SubCategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
	CreateSubject(ctx context.Context, subject *Subject) error
	ListSubjects(ctx context.Context) ([]*Subject, error)
	SubjectExists(ctx context.Context, id uuid.UUID) (bool, error)
	CreateTeacher(ctx context.Context, teacher *Teacher) error
	ListTeachers(ctx context.Context) ([]*Teacher, error)
	TeacherExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// --- Product Operations ---

func (r *repository) CreateProduct(ctx context.Context, product *Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	var product Product
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) ListProducts(ctx context.Context, filter *ProductFilter, pagination *Pagination) ([]*Product, int64, error) {
	var products []*Product
	var total int64

	query := r.db.WithContext(ctx).Model(&Product{})

	if filter != nil {
		if filter.CategoryID != nil {
			query = query.Where("category_id = ?", *filter.CategoryID)
		}
		if filter.SubjectID != nil {
			query = query.Where("subject_id = ?", *filter.SubjectID)
		}
		if filter.TeacherID != nil {
			query = query.Where("teacher_id = ?", *filter.TeacherID)
		}
		if filter.Type != nil {
			query = query.Where("type = ?", *filter.Type)
		}
		if filter.IsAvailable != nil {
			query = query.Where("is_available = ?", *filter.IsAvailable)
		}
		if filter.Search != "" {
			query = query.Where("name ILIKE ? OR description ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if pagination != nil {
		query = query.Offset(pagination.Offset()).Limit(pagination.PageSize)
	}

	err := query.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *repository) UpdateProduct(ctx context.Context, product *Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) ProductExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &Product{}, id)
}

// --- Product Image Operations ---

// CreateProductImages creates one child record per key inside a single
// transaction, locking the owning product row so concurrent bulk binds for
// the same product cannot interleave sort positions. Records are created in
// input order with sort positions continuing from the current maximum.
func (r *repository) CreateProductImages(ctx context.Context, productID uuid.UUID, keys []string) ([]ProductImage, error) {
	var images []ProductImage

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, "id = ?", productID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		var next int
		err = tx.Model(&ProductImage{}).
			Where("product_id = ?", productID).
			Select("COALESCE(MAX(sort_order)+1, 0)").
			Scan(&next).Error
		if err != nil {
			return err
		}

		images = make([]ProductImage, len(keys))
		for i, key := range keys {
			images[i] = ProductImage{
				ProductID: productID,
				Image:     key,
				SortOrder: next + i,
			}
		}

		return tx.Create(&images).Error
	})
	if err != nil {
		return nil, err
	}

	return images, nil
}

func (r *repository) DeleteProductImage(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&ProductImage{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductImageNotFound
	}
	return nil
}

// --- Reference Entity Operations ---

func (r *repository) CreateCategory(ctx context.Context, category *Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) ListCategories(ctx context.Context) ([]*Category, error) {
	var categories []*Category
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&categories).Error
	return categories, err
}

func (r *repository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &Category{}, id)
}

func (r *repository) CreateSubCategory(ctx context.Context, subCategory *SubCategory) error {
	return r.db.WithContext(ctx).Create(subCategory).Error
}

func (r *repository) ListSubCategories(ctx context.Context, categoryID *uuid.UUID) ([]*SubCategory, error) {
	var subCategories []*SubCategory
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	err := query.Find(&subCategories).Error
	return subCategories, err
}

func (r *repository) SubCategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &SubCategory{}, id)
}

func (r *repository) CreateSubject(ctx context.Context, subject *Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *repository) ListSubjects(ctx context.Context) ([]*Subject, error) {
	var subjects []*Subject
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&subjects).Error
	return subjects, err
}

func (r *repository) SubjectExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &Subject{}, id)
}

func (r *repository) CreateTeacher(ctx context.Context, teacher *Teacher) error {
	return r.db.WithContext(ctx).Create(teacher).Error
}

func (r *repository) ListTeachers(ctx context.Context) ([]*Teacher, error) {
	var teachers []*Teacher
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&teachers).Error
	return teachers, err
}

func (r *repository) TeacherExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &Teacher{}, id)
}

func (r *repository) exists(ctx context.Context, model any, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
