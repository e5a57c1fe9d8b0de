package convert

import (
	"bytes"
	"context"
	"image/jpeg"

	"codeberg.org/go-pdf/fpdf"

	"github.com/swiftconvert/server/pkg/utils"
)

// ImageToPDF embeds the image on a single PDF page sized to the image.
// Palette and alpha images are flattened onto a white background first; PDF
// carries no transparency, and skipping this step renders black backgrounds
// in many viewers.
func (c *Converter) ImageToPDF(ctx context.Context, inputPath, outputPath string) (string, error) {
	img, _, err := utils.DecodeImageFile(inputPath)
	if err != nil {
		return "", err
	}
	flat := utils.FlattenToRGB(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: 95}); err != nil {
		return "", utils.NewConversionError("failed to encode image for PDF", err)
	}

	bounds := flat.Bounds()
	w, h := float64(bounds.Dx()), float64(bounds.Dy())

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
	opts := fpdf.ImageOptions{ReadDpi: false, ImageType: "JPEG"}
	pdf.RegisterImageOptionsReader("page", opts, &buf)
	pdf.ImageOptions("page", 0, 0, w, h, false, opts, 0, "")

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return "", utils.NewConversionError("failed to write PDF", err).WithContext("output", outputPath)
	}
	c.log.Info().Str("output", outputPath).Msg("Image to PDF conversion successful")
	return outputPath, nil
}

// ImageToImage re-encodes the image as targetFormat. JPEG targets flatten
// alpha onto white inside the encoder helper.
func (c *Converter) ImageToImage(ctx context.Context, inputPath, outputPath, targetFormat string) (string, error) {
	img, _, err := utils.DecodeImageFile(inputPath)
	if err != nil {
		return "", err
	}
	if err := utils.EncodeImageFile(img, outputPath, targetFormat); err != nil {
		return "", err
	}
	c.log.Info().Str("output", outputPath).Msg("Image conversion successful")
	return outputPath, nil
}
