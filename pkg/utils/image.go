package utils

import (
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"

	// Extra decoders beyond the stdlib formats; uploads are matched by
	// sniffing, not extension.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/swiftconvert/server/pkg/constants"
)

// DecodeImageFile opens and decodes an image in any registered format.
func DecodeImageFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", NewIOError("failed to open image", err).WithContext("path", path)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", NewConversionError("failed to decode image", err).WithContext("path", path)
	}
	return img, format, nil
}

// FlattenToRGB composites an image over a white background and returns an
// opaque RGBA. Palette and alpha-channel images must be flattened before
// encoding to formats without transparency (JPEG, PDF); skipping this yields
// black backgrounds in many renderers.
func FlattenToRGB(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Over)
	return out
}

// EncodeImageFile writes an image to path as the given format token
// (png, jpg, jpeg). JPEG output is flattened first.
func EncodeImageFile(img image.Image, path, format string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, constants.DefaultFilePermission)
	if err != nil {
		return NewIOError("failed to create image file", err).WithContext("path", path)
	}
	defer f.Close()

	switch format {
	case "png":
		err = png.Encode(f, img)
	case "jpg", "jpeg":
		err = jpeg.Encode(f, FlattenToRGB(img), &jpeg.Options{Quality: 95})
	default:
		return NewUnsupportedError("unsupported image output format: "+format, nil)
	}
	if err != nil {
		return NewConversionError("failed to encode image", err).WithContext("format", format)
	}
	return nil
}
