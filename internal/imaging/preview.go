package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// PreviewResult is a downscaled PNG of a redacted page.
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Preview fits img inside maxDim x maxDim and returns it as base64 PNG.
// Images already small enough are encoded unscaled.
func Preview(img image.Image, maxDim int) (*PreviewResult, error) {
	if maxDim <= 0 {
		return nil, fmt.Errorf("invalid preview size %d", maxDim)
	}
	out := img
	if b := img.Bounds(); b.Dx() > maxDim || b.Dy() > maxDim {
		out = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
