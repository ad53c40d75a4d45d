package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// MaxImageDimension bounds the longest side of stored logos and campus photos
const MaxImageDimension = 1024

var ErrInvalidImage = errors.New("file is not a supported image")

// NormalizeImage decodes an uploaded image, applies its EXIF orientation,
// shrinks it to fit maxDim x maxDim and re-encodes it as JPEG
func NormalizeImage(r io.Reader, maxDim int) ([]byte, error) {
	if maxDim <= 0 {
		maxDim = MaxImageDimension
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	b := img.Bounds()
	if b.Dx() > maxDim || b.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
