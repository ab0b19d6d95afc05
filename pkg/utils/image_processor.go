package utils

import (
	"bytes"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"mime/multipart"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// ProcessImage resizes and re-encodes an uploaded product image as WebP.
// Watch listing photos arrive as large JPEGs from the studio; anything
// wider than 2000px is downscaled before encoding.
func ProcessImage(file multipart.File) ([]byte, string, error) {
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, "", err
	}

	if img.Bounds().Dx() > 2000 {
		img = imaging.Resize(img, 2000, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	err = webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: 85})
	if err != nil {
		// WebP encoder is cgo-backed; fall back to JPEG if it fails.
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/jpeg", nil
	}

	return buf.Bytes(), "image/webp", nil
}

// IsImage verifies a simple image content type.
func IsImage(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	}
	return false
}
