package ocr

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinarizeSeparatesDarkTextFromLightBackground(t *testing.T) {
	// light background with a dark square in the middle
	src := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			c := color.RGBA{R: 220, G: 220, B: 220, A: 255}
			if x >= 12 && x < 20 && y >= 12 && y < 20 {
				c = color.RGBA{R: 30, G: 30, B: 30, A: 255}
			}
			src.Set(x, y, c)
		}
	}

	out := Binarize(src)
	require.Equal(t, 32, out.Bounds().Dx())
	require.Equal(t, 32, out.Bounds().Dy())

	assert.Equal(t, uint8(0), out.GrayAt(15, 15).Y, "center of the dark square stays black")
	assert.Equal(t, uint8(255), out.GrayAt(2, 2).Y, "background far from the square turns white")
}

func TestBinarizeUniformImageIsWhite(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			src.SetGray(x, y, color.Gray{Y: 128})
		}
	}

	out := Binarize(src)
	// every pixel equals the local mean, so the offset pushes all white
	assert.Equal(t, uint8(255), out.GrayAt(8, 8).Y)
	assert.Equal(t, uint8(255), out.GrayAt(0, 0).Y)
}
