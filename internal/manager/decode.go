package manager

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// decodeImage decodes an upload in any registered format. The header is
// read first so that an image declaring more than maxPixels pixels is
// rejected before the decoder allocates its buffer. Failures are reported as
// invalid input.
func decodeImage(data []byte, maxPixels int64) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrInvalidInput("empty upload")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", ErrInvalidInput("not a supported image (jpeg, png, gif, webp, bmp): " + err.Error())
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", ErrInvalidInput("image has no pixels")
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, "", ErrInvalidInput(fmt.Sprintf("image is %dx%d, above the %d pixel limit", cfg.Width, cfg.Height, maxPixels))
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", ErrInvalidInput("not a supported image (jpeg, png, gif, webp, bmp): " + err.Error())
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, "", ErrInvalidInput("image has no pixels")
	}
	return img, format, nil
}
