// Package locale maps machine-readable error codes to the Arabic strings
// shown to dashboard and storefront clients. Validation logic never touches
// these; handlers call Message at the presentation boundary.
package locale

import (
	"fmt"

	apperrors "github.com/easystream/server/internal/shared/errors"
)

// Field-scoped templates take the field name as the single argument.
var fieldMessages = map[string]string{
	apperrors.CodeMissingField:     "حقل %s مطلوب",
	apperrors.CodeInvalidEnum:      "حقل %s يحتوي على قيمة غير صالحة",
	apperrors.CodeCategoryMismatch: "حقل %s لا يطابق نوع الملف المرفوع",
}

var messages = map[string]string{
	apperrors.CodeNotFound:           "العنصر المطلوب غير موجود",
	apperrors.CodeStorageUnavailable: "فشل إنشاء رابط التحميل، يرجى المحاولة لاحقًا",
	apperrors.CodeValidationFailed:   "البيانات المدخلة غير صالحة",
	apperrors.CodeAssetMissing:       "الملف المطلوب غير موجود في التخزين",
	"UNAUTHORIZED":                   "يجب تسجيل الدخول أولًا",
	"FORBIDDEN":                      "ليس لديك صلاحية للقيام بهذا الإجراء",
	"INTERNAL_ERROR":                 "حدث خطأ غير متوقع، يرجى المحاولة لاحقًا",
}

// Message returns the localized message for an application error. Unknown
// codes fall back to the error's own message.
func Message(err *apperrors.AppError) string {
	if err == nil {
		return ""
	}
	if tmpl, ok := fieldMessages[err.Code]; ok && err.Field != "" {
		return fmt.Sprintf(tmpl, err.Field)
	}
	if msg, ok := messages[err.Code]; ok {
		return msg
	}
	return err.Message
}

// BulkImageMissingKey is the index-scoped message reported for a bulk image
// element without an object_key. The index is kept in the message so clients
// can pinpoint the failing element.
func BulkImageMissingKey(index int) string {
	return fmt.Sprintf("Image at index %d is missing 'object_key'", index)
}

// BulkImageBadPrefix is the index-scoped message for a bulk image element
// whose key is not under the image namespace.
func BulkImageBadPrefix(index int, wantPrefix string) string {
	return fmt.Sprintf("Image at index %d must use an object key under '%s'", index, wantPrefix)
}
