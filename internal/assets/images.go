package assets

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"os"
)

// reencodeJPEG decodes a JPEG and re-encodes it at the configured quality.
// The original bytes are kept when re-encoding does not shrink the file.
func reencodeJPEG(path string, quality int) ([]byte, error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}

	if buf.Len() >= len(original) {
		return original, nil
	}

	return buf.Bytes(), nil
}

// reencodePNG re-encodes a PNG with best compression, keeping the original
// bytes when that does not shrink the file.
func reencodePNG(path string) ([]byte, error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	img, err := png.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, err
	}

	encoder := png.Encoder{CompressionLevel: png.BestCompression}
	var buf bytes.Buffer
	if err := encoder.Encode(&buf, img); err != nil {
		return nil, err
	}

	if buf.Len() >= len(original) {
		return original, nil
	}

	return buf.Bytes(), nil
}
