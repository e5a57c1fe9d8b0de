package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/swiftconvert/server/pkg/interfaces"
	"github.com/swiftconvert/server/pkg/types"
	"github.com/swiftconvert/server/pkg/utils"
)

const translateTimeout = 30 * time.Second

// HTTPTranslator calls a LibreTranslate-compatible endpoint. An empty
// endpoint disables the capability; callers check Enabled before relying
// on translation and fall back to the original text otherwise.
type HTTPTranslator struct {
	endpoint string
	apiKey   string
	client   *http.Client
	log      zerolog.Logger
}

var _ interfaces.Translator = (*HTTPTranslator)(nil)

// NewHTTPTranslator builds a translator against endpoint. Pass an empty
// endpoint to disable translation.
func NewHTTPTranslator(endpoint, apiKey string, log zerolog.Logger) *HTTPTranslator {
	return &HTTPTranslator{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: translateTimeout},
		log:      log,
	}
}

// Enabled reports whether an endpoint is configured.
func (t *HTTPTranslator) Enabled() bool {
	return t.endpoint != ""
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

// Translate sends text to the endpoint. Failures come back as a result with
// Success=false rather than an error so callers can fall back uniformly;
// only a disabled translator or unusable input is an error.
func (t *HTTPTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (*types.TranslationResult, error) {
	if !t.Enabled() {
		return nil, utils.NewDisabledError("translation is disabled on this server")
	}
	if len(strings.TrimSpace(text)) < 2 {
		return nil, utils.NewValidationError("text too short to translate", nil)
	}
	if sourceLang == "" {
		sourceLang = "auto"
	}

	result := &types.TranslationResult{
		Original:       text,
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
	}

	translated, err := t.call(ctx, text, sourceLang, targetLang)
	if err != nil {
		t.log.Warn().Err(err).Str("target", targetLang).Msg("translation failed")
		result.Error = err.Error()
		return result, nil
	}

	result.Translated = translated
	result.Success = true
	return result, nil
}

func (t *HTTPTranslator) call(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	body, err := json.Marshal(translateRequest{
		Q:      text,
		Source: sourceLang,
		Target: targetLang,
		Format: "text",
		APIKey: t.apiKey,
	})
	if err != nil {
		return "", utils.NewSystemError("failed to encode translation request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", utils.NewSystemError("failed to build translation request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", utils.NewError(utils.ErrorTypeNetwork, "translation request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", utils.NewError(utils.ErrorTypeNetwork, "failed to read translation response", err)
	}

	var parsed translateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", utils.NewError(utils.ErrorTypeNetwork, "malformed translation response", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := parsed.Error
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", utils.NewError(utils.ErrorTypeNetwork, "translation service error: "+msg, nil)
	}
	return parsed.TranslatedText, nil
}

// DisabledTranslator is the stand-in when no endpoint is configured.
type DisabledTranslator struct{}

var _ interfaces.Translator = (*DisabledTranslator)(nil)

func (DisabledTranslator) Enabled() bool { return false }

func (DisabledTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (*types.TranslationResult, error) {
	return nil, utils.NewDisabledError("translation is disabled on this server")
}
