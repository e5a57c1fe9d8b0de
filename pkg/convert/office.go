package convert

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/swiftconvert/server/pkg/constants"
	"github.com/swiftconvert/server/pkg/utils"
)

// OfficeConvert handles legacy office formats (doc, odt) by shelling out to
// LibreOffice in headless mode. The tool writes into an output directory
// using the input's base name, so the result is renamed to outputPath.
func (c *Converter) OfficeConvert(ctx context.Context, inputPath, outputPath string) (string, error) {
	if !utils.IsCommandAvailable(c.sofficePath) {
		return "", utils.NewSystemError(fmt.Sprintf(
			"document rendering tool %q not found; install LibreOffice or set SWIFTCONVERT_SOFFICE_PATH",
			c.sofficePath), nil)
	}

	targetFormat := strings.TrimPrefix(filepath.Ext(outputPath), ".")
	outDir := filepath.Dir(outputPath)

	ctx, cancel := context.WithTimeout(ctx, constants.RenderToolTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.sofficePath,
		"--headless", "--convert-to", targetFormat, "--outdir", outDir, inputPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", utils.NewError(utils.ErrorTypeTimeout,
				"document rendering tool timed out", ctx.Err()).WithContext("input", inputPath)
		}
		c.log.Error().Str("output", string(output)).Msg("document rendering tool failed")
		return "", utils.NewConversionError("document rendering tool failed", err).
			WithContext("input", inputPath)
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	produced := filepath.Join(outDir, base+"."+targetFormat)
	if produced != outputPath {
		if err := os.Rename(produced, outputPath); err != nil {
			return "", utils.NewIOError("failed to move rendered document", err).
				WithContext("produced", produced)
		}
	}
	c.log.Info().Str("output", outputPath).Msg("office conversion successful")
	return outputPath, nil
}
