// Package server exposes the conversion engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/swiftconvert/server/pkg/analyze"
	"github.com/swiftconvert/server/pkg/billing"
	"github.com/swiftconvert/server/pkg/config"
	"github.com/swiftconvert/server/pkg/constants"
	"github.com/swiftconvert/server/pkg/convert"
	"github.com/swiftconvert/server/pkg/extract"
	"github.com/swiftconvert/server/pkg/interfaces"
	"github.com/swiftconvert/server/pkg/ocr"
	"github.com/swiftconvert/server/pkg/pipeline"
	"github.com/swiftconvert/server/pkg/storage"
)

// ConversionRouter resolves a source/target pair to a conversion strategy.
type ConversionRouter interface {
	Route(sourceExt, targetExt string) (convert.Strategy, error)
}

// Server wires the HTTP surface to the conversion core.
type Server struct {
	cfg        *config.Config
	store      *storage.Store
	router     ConversionRouter
	extractor  *extract.Extractor
	engines    *ocr.Selector
	classifier *analyze.Classifier
	detector   interfaces.LanguageDetector
	translator interfaces.Translator
	orch       *pipeline.Orchestrator
	sink       interfaces.AnalyticsSink

	// billing is nil unless Stripe keys are configured
	gateway  *billing.Gateway
	billing  *billing.Store
	log      zerolog.Logger
	httpSrv  *http.Server
	shutdown time.Duration
}

// Deps carries the constructed components the server serves.
type Deps struct {
	Config     *config.Config
	Store      *storage.Store
	Router     ConversionRouter
	Extractor  *extract.Extractor
	Engines    *ocr.Selector
	Classifier *analyze.Classifier
	Detector   interfaces.LanguageDetector
	Translator interfaces.Translator
	Orch       *pipeline.Orchestrator
	Sink       interfaces.AnalyticsSink
	Gateway    *billing.Gateway
	Billing    *billing.Store
	Log        zerolog.Logger
}

// New builds the server from its dependencies.
func New(d Deps) *Server {
	return &Server{
		cfg:        d.Config,
		store:      d.Store,
		router:     d.Router,
		extractor:  d.Extractor,
		engines:    d.Engines,
		classifier: d.Classifier,
		detector:   d.Detector,
		translator: d.Translator,
		orch:       d.Orch,
		sink:       d.Sink,
		gateway:    d.Gateway,
		billing:    d.Billing,
		log:        d.Log,
		shutdown:   constants.DefaultShutdownTimeout,
	}
}

// Routes assembles the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/formats", s.handleFormats)
		r.Get("/config", s.handleConfig)

		r.Post("/convert", s.handleConvert)
		r.Post("/ocr", s.handleOCR)
		r.Post("/ocr-and-convert", s.handleOCRAndConvert)

		r.Post("/classify-document", s.handleClassify)
		r.Post("/detect-language", s.handleDetectLanguage)
		r.Post("/translate", s.handleTranslate)
		r.Post("/recommend-format", s.handleRecommendFormat)
		r.Post("/quality-score", s.handleQualityScore)
		r.Get("/analytics", s.handleAnalytics)

		r.Post("/create-checkout-session", s.handleCheckout)
		r.Post("/webhook", s.handleWebhook)

		r.Get("/download/{filename}", s.handleDownload)
	})

	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Int("port", s.cfg.Port).Msg("server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	s.log.Info().Msg("shutting down")
	return s.httpSrv.Shutdown(shutdownCtx)
}
