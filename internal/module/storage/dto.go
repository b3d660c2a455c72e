package storage

// GeneratePresignedURLRequest is the request body for presign issuance.
// Fields are validated by the service rather than binding tags so each
// failure carries its error code.
type GeneratePresignedURLRequest struct {
	FileName     string `json:"file_name"`
	FileType     string `json:"file_type"`
	FileCategory string `json:"file_category"`
}

// GeneratePresignedURLResponse is the response body for presign issuance.
type GeneratePresignedURLResponse struct {
	Success   bool   `json:"success"`
	URL       string `json:"url"`
	PublicURL string `json:"public_url"`
	ObjectKey string `json:"object_key"`
	FileType  string `json:"file_type"`
	ExpiresAt string `json:"expires_at"`
}
