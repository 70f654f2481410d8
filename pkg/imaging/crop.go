package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedFormat is returned for anything but JPEG and PNG.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ErrHEIC is returned for HEIC/HEIF photos, which cannot be decoded server-side.
var ErrHEIC = fmt.Errorf("%w: HEIC/HEIF images must be converted to JPEG or PNG before upload", ErrUnsupportedFormat)

const jpegQuality = 90

// Detect returns the mime type of data, rejecting formats other than JPEG and PNG.
func Detect(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".heic" || ext == ".heif" || isHEIC(data) {
		return "", ErrHEIC
	}
	mime := http.DetectContentType(data)
	switch mime {
	case "image/jpeg", "image/png":
		return mime, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime)
}

// isHEIC looks for the ISO-BMFF ftyp box with a HEIF brand.
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "hevc", "hevx", "heim", "heis", "mif1", "msf1":
		return true
	}
	return false
}

// CropSquare crops the image to a square centred on its shorter side and
// re-encodes it in its original format. EXIF orientation is applied first so
// phone photos are cropped the way they are displayed.
func CropSquare(filename string, data []byte) ([]byte, string, error) {
	mime, err := Detect(filename, data)
	if err != nil {
		return nil, "", err
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	rect := SquareRect(src.Bounds())
	dst := imaging.CropCenter(src, rect.Dx(), rect.Dy())

	format := imaging.JPEG
	if mime == "image/png" {
		format = imaging.PNG
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, format, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), mime, nil
}

// SquareRect is the largest square centred in b.
func SquareRect(b image.Rectangle) image.Rectangle {
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}
