package engines

import (
	"context"

	"github.com/swiftconvert/server/pkg/interfaces"
	"github.com/swiftconvert/server/pkg/types"
	"github.com/swiftconvert/server/pkg/utils"
)

// DisabledEngine stands in when OCR is turned off in the configuration.
// Every recognition attempt returns a feature-disabled error so callers
// can surface the capability state instead of an empty result.
type DisabledEngine struct{}

var _ interfaces.OCREngine = (*DisabledEngine)(nil)

// NewDisabledEngine returns the disabled placeholder engine.
func NewDisabledEngine() *DisabledEngine {
	return &DisabledEngine{}
}

func (e *DisabledEngine) Name() string { return "disabled" }

func (e *DisabledEngine) Available() bool { return false }

func (e *DisabledEngine) Recognize(ctx context.Context, imagePath string) (*types.OcrResult, error) {
	return nil, utils.NewDisabledError("OCR is disabled on this server")
}
