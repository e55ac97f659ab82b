package utils

import (
	"context"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const avatarFolder = "avatars"

// Cloudinary uploads profile pictures.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	preset string
}

func NewCloudinary(cloudName, apiKey, apiSecret, uploadPreset string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	return &Cloudinary{cld: cld, preset: uploadPreset}, nil
}

// UploadAvatar stores file under publicID, replacing any previous picture,
// and returns the secure URL of a 200x200 thumbnail.
func (c *Cloudinary) UploadAvatar(ctx context.Context, file io.Reader, publicID string) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         avatarFolder,
		UploadPreset:   c.preset,
		Overwrite:      api.Bool(true),
		Transformation: "c_thumb,w_200,h_200",
	})
	if err != nil {
		return "", err
	}
	if resp.Error.Message != "" {
		return "", &cloudinaryError{resp.Error.Message}
	}
	return resp.SecureURL, nil
}

type cloudinaryError struct{ msg string }

func (e *cloudinaryError) Error() string { return "cloudinary: " + e.msg }
