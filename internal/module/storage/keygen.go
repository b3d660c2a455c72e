package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// UploadCategory is the closed enumeration controlling an upload's key
// namespace and expected content type.
type UploadCategory string

const (
	CategoryPDF     UploadCategory = "pdf"
	CategoryImage   UploadCategory = "image"
	CategoryUploads UploadCategory = "uploads"
)

// Categories lists all valid upload categories.
var Categories = []string{
	string(CategoryPDF),
	string(CategoryImage),
	string(CategoryUploads),
}

// ParseCategory parses an upload category string.
func ParseCategory(s string) (UploadCategory, error) {
	switch UploadCategory(s) {
	case CategoryPDF, CategoryImage, CategoryUploads:
		return UploadCategory(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Prefix returns the key namespace prefix for the category.
func (c UploadCategory) Prefix() string {
	switch c {
	case CategoryPDF:
		return "pdfs/"
	case CategoryImage:
		return "products/"
	default:
		return "uploads/"
	}
}

// DefaultExtension returns the extension used when the client file name
// carries none.
func (c UploadCategory) DefaultExtension() string {
	switch c {
	case CategoryPDF:
		return "pdf"
	case CategoryImage:
		return "jpg"
	default:
		return "bin"
	}
}

// AllowedTypes returns the advisory MIME allow-list for the category. An
// empty slice means any type is accepted.
func (c UploadCategory) AllowedTypes() []string {
	switch c {
	case CategoryPDF:
		return []string{"application/pdf"}
	case CategoryImage:
		return []string{"image/jpeg", "image/png", "image/webp", "image/gif"}
	default:
		return nil
	}
}

// GenerateKey derives a collision-resistant, category-namespaced object key
// from a client file name. The basename is a fresh v4 UUID, so two calls with
// the same file name never collide. Pure apart from the UUID source.
func GenerateKey(fileName string, category UploadCategory) (string, error) {
	if strings.TrimSpace(fileName) == "" {
		return "", ErrEmptyFileName
	}

	ext := strings.TrimPrefix(path.Ext(fileName), ".")
	if ext == "" {
		ext = category.DefaultExtension()
	}

	return fmt.Sprintf("%s%s.%s", category.Prefix(), uuid.New().String(), strings.ToLower(ext)), nil
}

// KeyInCategory reports whether an object key belongs to the category's
// namespace. Prefix matching is the only integrity check available: the
// server never observes the upload, so a key's namespace is all it can
// verify at bind time.
func KeyInCategory(key string, category UploadCategory) bool {
	return strings.HasPrefix(key, category.Prefix()) && len(key) > len(category.Prefix())
}
