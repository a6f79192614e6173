// Package media stores uploaded chart images so history items can reference
// them by URL.
package media

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"chartvision-backend-go/internal/models"
)

// chartFolder is the Cloudinary folder all chart uploads land in.
const chartFolder = "chartvision/charts"

// CloudinaryStore uploads chart images to Cloudinary.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore creates a CloudinaryStore from account credentials.
func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

// UploadChartImage stores a chart image under the owning user and returns
// its public URL. The data-URI form is accepted directly by the uploader.
func (s *CloudinaryStore) UploadChartImage(ctx context.Context, userID string, image models.ImagePayload) (string, error) {
	uploadResult, err := s.cld.Upload.Upload(ctx, image.DataURI(), uploader.UploadParams{
		Folder:       chartFolder,
		PublicID:     userID + "-" + uuid.NewString(),
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload chart image to Cloudinary: %w", err)
	}
	return uploadResult.SecureURL, nil
}
