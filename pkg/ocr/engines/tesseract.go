// Package engines provides the OCR engine implementations behind the
// interfaces.OCREngine capability.
package engines

import (
	"bytes"
	"context"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/swiftconvert/server/pkg/interfaces"
	"github.com/swiftconvert/server/pkg/ocr"
	"github.com/swiftconvert/server/pkg/types"
	"github.com/swiftconvert/server/pkg/utils"
)

// TesseractEngine runs OCR through the gosseract client. The binarized
// variant applies adaptive-threshold preprocessing before recognition.
type TesseractEngine struct {
	name      string
	languages []string
	binarize  bool

	clientFactory func() *gosseract.Client
}

var _ interfaces.OCREngine = (*TesseractEngine)(nil)

// NewStandardEngine constructs the default Tesseract engine.
func NewStandardEngine(languages []string) *TesseractEngine {
	return &TesseractEngine{
		name:          string(types.OCREngineStandard),
		languages:     languages,
		clientFactory: gosseract.NewClient,
	}
}

// NewBinarizedEngine constructs the engine variant that binarizes the image
// (grayscale + adaptive threshold) before recognition.
func NewBinarizedEngine(languages []string) *TesseractEngine {
	return &TesseractEngine{
		name:          string(types.OCREngineBinarized),
		languages:     languages,
		binarize:      true,
		clientFactory: gosseract.NewClient,
	}
}

// Name returns the engine token.
func (e *TesseractEngine) Name() string {
	return e.name
}

// Available reports whether the engine can run. The gosseract client links
// libtesseract at build time, so a built binary always has it.
func (e *TesseractEngine) Available() bool {
	return true
}

// Recognize extracts text from an image file. An unreadable image is an
// error; a readable image with no text yields confidence 0 and no error.
func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string) (*types.OcrResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	client := e.clientFactory()
	defer client.Close()

	if err := e.setImage(client, imagePath); err != nil {
		return nil, err
	}
	if len(e.languages) > 0 {
		if err := client.SetLanguage(e.languages...); err != nil {
			return nil, utils.NewOCRError("failed to set recognition languages", err)
		}
	}

	text, err := client.Text()
	if err != nil {
		return nil, utils.NewOCRError("text recognition failed", err).
			WithContext("image", imagePath)
	}
	text = strings.TrimSpace(text)

	blocks, confidence := wordBlocks(client)
	if text == "" {
		confidence = 0
	}

	return &types.OcrResult{
		Text:       text,
		Confidence: confidence,
		WordCount:  utils.CountWords(text),
		Blocks:     blocks,
		Engine:     e.name,
	}, nil
}

func (e *TesseractEngine) setImage(client *gosseract.Client, imagePath string) error {
	if !e.binarize {
		if err := client.SetImage(imagePath); err != nil {
			return utils.NewOCRError("could not read image", err).
				WithContext("image", imagePath)
		}
		return nil
	}

	img, _, err := utils.DecodeImageFile(imagePath)
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeOCR, "could not read image for preprocessing")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, ocr.Binarize(img)); err != nil {
		return utils.NewOCRError("failed to encode preprocessed image", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return utils.NewOCRError("could not load preprocessed image", err)
	}
	return nil
}

// wordBlocks collects per-word regions and returns them with the average
// word confidence normalized to [0,1]. Tesseract reports confidences 0-100.
func wordBlocks(client *gosseract.Client) ([]types.TextBlock, float64) {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return nil, 0
	}

	blocks := make([]types.TextBlock, 0, len(boxes))
	var sum float64
	for _, b := range boxes {
		conf := b.Confidence / 100.0
		sum += conf
		blocks = append(blocks, types.TextBlock{
			Text:       b.Word,
			Confidence: conf,
			BBox: []float64{
				float64(b.Box.Min.X), float64(b.Box.Min.Y),
				float64(b.Box.Max.X), float64(b.Box.Max.Y),
			},
		})
	}
	return blocks, sum / float64(len(boxes))
}
