// Package ocr selects and preprocesses for the text recognition engines.
package ocr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/swiftconvert/server/pkg/interfaces"
	"github.com/swiftconvert/server/pkg/types"
	"github.com/swiftconvert/server/pkg/utils"
)

// Selector resolves OCR engines by name. When OCR is disabled every
// selection yields the disabled placeholder engine.
type Selector struct {
	enabled bool
	def     types.OCREngineKind
	engines map[types.OCREngineKind]interfaces.OCREngine
}

// NewSelector builds a selector over the given engines. def names the engine
// used when a request does not ask for a specific one.
func NewSelector(enabled bool, def types.OCREngineKind, engines map[types.OCREngineKind]interfaces.OCREngine) *Selector {
	return &Selector{enabled: enabled, def: def, engines: engines}
}

// Enabled reports whether OCR is available at all.
func (s *Selector) Enabled() bool {
	return s.enabled
}

// Default returns the configured default engine.
func (s *Selector) Default() (interfaces.OCREngine, error) {
	return s.Select("")
}

// Select returns the engine registered under name, or the default engine
// when name is empty. Unknown names are a validation error listing the
// registered engines.
func (s *Selector) Select(name string) (interfaces.OCREngine, error) {
	if !s.enabled {
		return nil, utils.NewDisabledError("OCR is disabled on this server")
	}
	kind := s.def
	if name != "" {
		kind = types.OCREngineKind(name)
	}
	engine, ok := s.engines[kind]
	if !ok {
		return nil, utils.NewValidationError(
			fmt.Sprintf("unknown OCR engine: %s. Available engines: %s", kind, s.engineNames()), nil)
	}
	return engine, nil
}

func (s *Selector) engineNames() string {
	names := make([]string, 0, len(s.engines))
	for kind := range s.engines {
		names = append(names, string(kind))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
