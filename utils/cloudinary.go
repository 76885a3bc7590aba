package utils

import (
	"context"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/meinhoongagan/smart-clinic/services"
)

// CloudinaryUploader stores attachments as Cloudinary raw/auto assets.
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	preset string
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret, uploadPreset string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	return &CloudinaryUploader{cld: cld, preset: uploadPreset}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, file io.Reader, publicID, folder string) (*services.UploadedFile, error) {
	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:     publicID,
		Folder:       folder,
		UploadPreset: u.preset,
		ResourceType: "auto",
	})
	if err != nil {
		return nil, err
	}
	if resp.Error.Message != "" {
		return nil, &cloudinaryError{msg: resp.Error.Message}
	}
	return &services.UploadedFile{
		URL:      resp.SecureURL,
		PublicID: resp.PublicID,
		Bytes:    resp.Bytes,
		Format:   resp.Format,
	}, nil
}

type cloudinaryError struct{ msg string }

func (e *cloudinaryError) Error() string { return "cloudinary: " + e.msg }
