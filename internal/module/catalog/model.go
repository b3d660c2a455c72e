package catalog

import (
	"time"

	"github.com/google/uuid"
)

// ProductType represents the type of product.
type ProductType string

const (
	ProductTypeBook    ProductType = "book"
	ProductTypePackage ProductType = "package"
)

// Valid reports whether the product type is known.
func (t ProductType) Valid() bool {
	return t == ProductTypeBook || t == ProductTypePackage
}

// Language represents the content language of a product.
type Language string

const (
	LanguageArabic  Language = "ar"
	LanguageEnglish Language = "en"
)

// Category represents a top-level catalog category.
type Category struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	Image     string    `json:"image,omitempty"` // object key
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (Category) TableName() string {
	return "categories"
}

// SubCategory represents a second-level category owned by a Category.
type SubCategory struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string    `json:"name" gorm:"not null"`
	CategoryID uuid.UUID `json:"category_id" gorm:"type:uuid;not null;index"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (SubCategory) TableName() string {
	return "sub_categories"
}

// Subject represents a school subject.
type Subject struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (Subject) TableName() string {
	return "subjects"
}

// Teacher represents a book author/teacher.
type Teacher struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string     `json:"name" gorm:"not null"`
	Bio       string     `json:"bio,omitempty"`
	Image     string     `json:"image,omitempty"` // object key
	SubjectID *uuid.UUID `json:"subject_id,omitempty" gorm:"type:uuid;index"`
	Facebook  string     `json:"facebook,omitempty"`
	YouTube   string     `json:"youtube,omitempty"`
	Website   string     `json:"website,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName returns the database table name.
func (Teacher) TableName() string {
	return "teachers"
}

// Product represents a digital book or package. PDFFile and BaseImage hold
// object keys verbatim; the stored value is the sole link to the uploaded
// bytes and is resolved to a public URL only at serialization time.
type Product struct {
	ID            uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductNumber string      `json:"product_number" gorm:"uniqueIndex"`
	Name          string      `json:"name" gorm:"not null"`
	Type          ProductType `json:"type" gorm:"not null;default:book"`
	CategoryID    *uuid.UUID  `json:"category_id,omitempty" gorm:"type:uuid;index"`
	SubCategoryID *uuid.UUID  `json:"sub_category_id,omitempty" gorm:"type:uuid;index"`
	SubjectID     *uuid.UUID  `json:"subject_id,omitempty" gorm:"type:uuid;index"`
	TeacherID     *uuid.UUID  `json:"teacher_id,omitempty" gorm:"type:uuid;index"`
	Price         *float64    `json:"price,omitempty"`
	Description   string      `json:"description,omitempty" gorm:"size:1000"`
	Year          string      `json:"year,omitempty"`
	PDFFile       string      `json:"pdf_file,omitempty"`   // object key under pdfs/
	BaseImage     string      `json:"base_image,omitempty"` // object key under products/
	PageCount     *int        `json:"page_count,omitempty"`
	FileSizeMB    *float64    `json:"file_size_mb,omitempty"`
	Language      Language    `json:"language" gorm:"default:ar"`
	IsAvailable   bool        `json:"is_available" gorm:"default:true"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	// Relations
	Images []ProductImage `json:"images,omitempty" gorm:"foreignKey:ProductID"`
}

// TableName returns the database table name.
func (Product) TableName() string {
	return "products"
}

// ProductImage represents a gallery image owned by a product. SortOrder is
// the display order; within one bulk bind it equals the input list order.
type ProductImage struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Image     string    `json:"image" gorm:"not null"` // object key under products/
	SortOrder int       `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (ProductImage) TableName() string {
	return "product_images"
}
