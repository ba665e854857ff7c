package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"VConnct/global"
)

// Uploader stores an image blob and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// Cloudinary uploads via the unsigned upload API: the file travels as a
// base64 data URI, same as the browser flow.
type Cloudinary struct {
	cfg  global.CloudinaryConfig
	http *resty.Client
}

func NewCloudinary(cfg global.CloudinaryConfig) *Cloudinary {
	return &Cloudinary{
		cfg: cfg,
		http: resty.New().
			SetBaseURL(fmt.Sprintf("https://api.cloudinary.com/v1_1/%s", cfg.CloudName)).
			SetTimeout(30 * time.Second),
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Cloudinary) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if c.cfg.CloudName == "" || c.cfg.UploadPreset == "" {
		return "", errors.New("cloudinary is not configured")
	}
	if len(data) == 0 {
		return "", errors.New("empty upload")
	}

	dataURI := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)

	var out uploadResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"file":          dataURI,
			"upload_preset": c.cfg.UploadPreset,
			"folder":        c.cfg.Folder,
		}).
		SetResult(&out).
		SetError(&out).
		Post("/auto/upload")
	if err != nil {
		return "", errors.Wrap(err, "cloudinary upload")
	}
	if resp.IsError() {
		return "", errors.Errorf("cloudinary upload: %s (%s)", resp.Status(), out.Error.Message)
	}
	if out.SecureURL == "" {
		return "", errors.New("cloudinary upload: empty secure_url")
	}
	return out.SecureURL, nil
}
