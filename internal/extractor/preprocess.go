// preprocess.go - Image preprocessing for better OCR accuracy

package extractor

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/quoc48/receipt-parser/configs"
)

// PreprocessImage sharpens and normalizes a receipt photo before it is
// sent to the vision model: resize to the configured maximum dimension,
// aggressive sharpen/contrast for small print, grayscale to strip color
// casts from phone cameras. Returns the processed bytes and MIME type.
func PreprocessImage(data []byte, mimeType string) ([]byte, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	maxDimension := configs.MAX_IMAGE_DIMENSION
	if maxDimension <= 0 {
		maxDimension = 2000
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		if bounds.Dx() > bounds.Dy() {
			img = imaging.Resize(img, maxDimension, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, maxDimension, imaging.Lanczos)
		}
	}

	img = imaging.Sharpen(img, 2.5)
	img = imaging.AdjustContrast(img, 40)
	img = imaging.AdjustBrightness(img, 15)
	img = imaging.Grayscale(img)
	img = imaging.AdjustContrast(img, 30)

	var buf bytes.Buffer
	switch mimeType {
	case "image/png":
		err = png.Encode(&buf, img)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95})
		mimeType = "image/jpeg"
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode processed image: %w", err)
	}

	return buf.Bytes(), mimeType, nil
}
