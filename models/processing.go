package models

// DownloadLink identifies one generated document returned by the processing backend.
type DownloadLink struct {
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
	Type     string `json:"type,omitempty"`
}

// ProcessResponse is the body returned by POST /api/process-forms.
type ProcessResponse struct {
	Success       bool           `json:"success"`
	Message       string         `json:"message,omitempty"`
	DownloadLinks []DownloadLink `json:"downloadLinks"`
	Error         string         `json:"error,omitempty"`
}
