package avatar

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Uploader stores an avatar image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, publicID string) (string, error)
}

// LogUploader fakes uploads for ENV=local: it logs and returns a
// placeholder URL so the rest of the flow can be exercised offline.
type LogUploader struct {
	logger *slog.Logger
}

func (u *LogUploader) Upload(_ context.Context, _ io.Reader, publicID string) (string, error) {
	url := "http://localhost/avatars/" + publicID
	u.logger.Info("avatar upload (local dev)", "public_id", publicID, "url", url)
	return url, nil
}

// CloudinaryUploader stores avatars in Cloudinary under the avatars folder.
type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func (u *CloudinaryUploader) Upload(ctx context.Context, r io.Reader, publicID string) (string, error) {
	res, err := u.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       "avatars",
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	return res.SecureURL, nil
}

// NewUploader returns a LogUploader for ENV=local, CloudinaryUploader
// otherwise. cloudinaryURL is the CLOUDINARY_URL connection string.
func NewUploader(env, cloudinaryURL string, logger *slog.Logger) (Uploader, error) {
	if env == "local" {
		return &LogUploader{logger: logger}, nil
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary client: %w", err)
	}
	return &CloudinaryUploader{cld: cld}, nil
}
