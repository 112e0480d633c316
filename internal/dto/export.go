package dto

import "github.com/noah-isme/studydesk-api/internal/models"

// ExportJobResponse is an export job with its download link once finished.
type ExportJobResponse struct {
	models.ExportJob
	DownloadURL string `json:"download_url,omitempty"`
}
