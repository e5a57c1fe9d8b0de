package convert

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	return NewRouter(NewConverter("soffice", t.TempDir(), zerolog.Nop()))
}

func TestRouteSpecialCases(t *testing.T) {
	r := newTestRouter(t)

	for _, pair := range [][2]string{{"pdf", "docx"}, {"docx", "pdf"}, {"PDF", "DOCX"}} {
		strategy, err := r.Route(pair[0], pair[1])
		require.NoError(t, err, "pair %v", pair)
		require.NotNil(t, strategy)
	}
}

func TestRouteSupportedPairs(t *testing.T) {
	r := newTestRouter(t)

	for source, targets := range SupportedConversions {
		for _, target := range targets {
			strategy, err := r.Route(source, target)
			require.NoError(t, err, "%s -> %s", source, target)
			require.NotNil(t, strategy, "%s -> %s", source, target)
		}
	}
}

func TestRouteUnsupportedPairListsTargets(t *testing.T) {
	r := newTestRouter(t)

	_, err := r.Route("xlsx", "pptx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Conversion from XLSX to PPTX is not supported")
	assert.Contains(t, err.Error(), "Supported targets for XLSX: csv")
}

func TestRouteUnsupportedPairEnumeratesAllTargets(t *testing.T) {
	r := newTestRouter(t)

	_, err := r.Route("csv", "docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf")
	assert.Contains(t, err.Error(), "xlsx")
}

func TestRouteUnknownSourceSaysNone(t *testing.T) {
	r := newTestRouter(t)

	_, err := r.Route("html", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Supported targets for HTML: None")
}

func TestRouteImagePredicatesAreExclusive(t *testing.T) {
	r := newTestRouter(t)

	// image -> pdf and image -> image must not shadow each other
	toPDF, err := r.Route("png", "pdf")
	require.NoError(t, err)
	require.NotNil(t, toPDF)

	toJPG, err := r.Route("png", "jpg")
	require.NoError(t, err)
	require.NotNil(t, toJPG)
}

func TestRouteRejectsImageToSelfUnlisted(t *testing.T) {
	r := newTestRouter(t)

	// jpg -> jpg is not in the table; only cross-format targets are
	_, err := r.Route("jpg", "jpg")
	require.Error(t, err)
}
