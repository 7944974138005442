package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrInvalidImage is returned when bytes do not decode to an image.
var ErrInvalidImage = errors.New("invalid image file")

// Format is an encodable container format.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// JPEGQuality is used for every JPEG written.
const JPEGQuality = 95

// FormatFromExt picks the format for a filename extension.
func FormatFromExt(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return JPEG, nil
	case ".png":
		return PNG, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	}
	return "", fmt.Errorf("unsupported output format: %q", filepath.Ext(name))
}

// Decode reads any registered image format (jpeg, png, gif, bmp, tiff, webp)
// into a BGR buffer. The second result is the detected format name.
func Decode(r io.Reader) (*Buffer, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, "", fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	return FromImage(img), format, nil
}

// DecodeBytes is Decode over a byte slice.
func DecodeBytes(data []byte) (*Buffer, string, error) {
	return Decode(bytes.NewReader(data))
}

// EncodeImage writes img in the given format.
func EncodeImage(w io.Writer, img image.Image, format Format) error {
	switch format {
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("unsupported output format: %q", format)
}

// Encode writes buf in the given format. A buffer whose Pix does not match
// its dimensions is rejected.
func Encode(w io.Writer, buf *Buffer, format Format) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	return EncodeImage(w, buf.Image(), format)
}
