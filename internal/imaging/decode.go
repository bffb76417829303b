package imaging

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Output formats accepted by Encode.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// Decode decodes a raster image and applies its EXIF orientation, so pixel
// coordinates from OCR and the re-encoded output share one frame.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("failed to decode image: empty input")
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("failed to decode image: zero-sized %dx%d", b.Dx(), b.Dy())
	}
	return img, nil
}

// Encode writes img as PNG or JPEG. Any other format name yields PNG.
func Encode(img image.Image, format string, jpegQuality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJPEG:
		if jpegQuality <= 0 {
			jpegQuality = 90
		}
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
	default:
		err = imaging.Encode(&buf, img, imaging.PNG)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// OutputFormat picks the encode format for a decoded input: JPEG stays JPEG
// unless PNG is requested, everything else becomes PNG.
func OutputFormat(inputFormat, requested string) string {
	switch requested {
	case FormatPNG, FormatJPEG:
		return requested
	}
	if inputFormat == FormatJPEG {
		return FormatJPEG
	}
	return FormatPNG
}
