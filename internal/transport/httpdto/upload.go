package httpdto

// UploadResponse is returned after a file lands in object storage.
type UploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
