package fileops

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"picdup/internal/fileutil"
	"picdup/internal/imageformat"
)

var (
	// ErrInvalidRotation indicates an unrecognized rotation direction.
	ErrInvalidRotation = errors.New("invalid rotation direction")
	// ErrUnsupportedRotate indicates the file's format cannot be re-encoded.
	ErrUnsupportedRotate = errors.New("format does not support rotation")
)

// jpegQuality keeps re-encoded rotations close to the source quality.
const jpegQuality = 95

// Rotation is a 90 degree turn direction.
type Rotation int

const (
	Clockwise Rotation = iota + 1
	CounterClockwise
)

// ParseRotation maps a flag value to a Rotation.
func ParseRotation(value string) (Rotation, error) {
	switch value {
	case "cw", "clockwise", "right":
		return Clockwise, nil
	case "ccw", "counterclockwise", "left":
		return CounterClockwise, nil
	default:
		return 0, fmt.Errorf("%w: %q (want cw or ccw)", ErrInvalidRotation, value)
	}
}

// Rotate turns the image at path 90 degrees in the given direction and
// overwrites it in place atomically. Supported formats are jpeg, png, bmp and
// tiff; animated or codec-exotic formats are rejected.
func Rotate(path string, direction Rotation) error {
	if direction != Clockwise && direction != CounterClockwise {
		return fmt.Errorf("%w: %d", ErrInvalidRotation, direction)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotRegular, path)
	}

	format := imageformat.Format(path)
	decode, encode, err := codecFor(format)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	src, err := decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := encode(&buf, rotate90(src, direction)); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return fileutil.WriteFileAtomic(path, buf.Bytes(), info.Mode().Perm())
}

type decodeFunc func(*os.File) (image.Image, error)

type encodeFunc func(*bytes.Buffer, image.Image) error

func codecFor(format string) (decodeFunc, encodeFunc, error) {
	switch format {
	case "jpg", "jpeg":
		return func(f *os.File) (image.Image, error) { return jpeg.Decode(f) },
			func(w *bytes.Buffer, img image.Image) error {
				return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
			}, nil
	case "png":
		return func(f *os.File) (image.Image, error) { return png.Decode(f) },
			func(w *bytes.Buffer, img image.Image) error { return png.Encode(w, img) }, nil
	case "bmp":
		return func(f *os.File) (image.Image, error) { return bmp.Decode(f) },
			func(w *bytes.Buffer, img image.Image) error { return bmp.Encode(w, img) }, nil
	case "tif", "tiff":
		return func(f *os.File) (image.Image, error) { return tiff.Decode(f) },
			func(w *bytes.Buffer, img image.Image) error { return tiff.Encode(w, img, nil) }, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedRotate, format)
	}
}

func rotate90(src image.Image, direction Rotation) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dy(), bounds.Dx()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if direction == Clockwise {
				dst.Set(bounds.Max.Y-1-y, x-bounds.Min.X, src.At(x, y))
			} else {
				dst.Set(y-bounds.Min.Y, bounds.Max.X-1-x, src.At(x, y))
			}
		}
	}
	return dst
}
