package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/swiftconvert/server/pkg/analytics"
	"github.com/swiftconvert/server/pkg/analyze"
	"github.com/swiftconvert/server/pkg/billing"
	"github.com/swiftconvert/server/pkg/config"
	"github.com/swiftconvert/server/pkg/convert"
	"github.com/swiftconvert/server/pkg/document"
	"github.com/swiftconvert/server/pkg/extract"
	"github.com/swiftconvert/server/pkg/interfaces"
	"github.com/swiftconvert/server/pkg/logger"
	"github.com/swiftconvert/server/pkg/ocr"
	"github.com/swiftconvert/server/pkg/ocr/engines"
	"github.com/swiftconvert/server/pkg/pipeline"
	"github.com/swiftconvert/server/pkg/server"
	"github.com/swiftconvert/server/pkg/storage"
	"github.com/swiftconvert/server/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the conversion API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)

		srv, cleanup, err := buildServer(cfg, log)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.Start(ctx)
	},
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
}

// buildServer constructs the component graph. The returned cleanup closes
// the database-backed sinks.
func buildServer(cfg *config.Config, log zerolog.Logger) (*server.Server, func(), error) {
	store, err := storage.NewStore(cfg.DataDir, cfg.MaxFileSize, log)
	if err != nil {
		return nil, nil, err
	}

	engineSet := map[types.OCREngineKind]interfaces.OCREngine{
		types.OCREngineStandard:  engines.NewStandardEngine(cfg.OCRLanguages),
		types.OCREngineBinarized: engines.NewBinarizedEngine(cfg.OCRLanguages),
	}
	selector := ocr.NewSelector(cfg.OCREnabled, cfg.OCREngine, engineSet)

	detector := analyze.NewDetector()
	extractor := extract.NewExtractor(store.UploadDir, float64(cfg.OCRDPI), detector, log)
	classifier := analyze.NewClassifier(cfg.ClassifierThreshold)

	var translator interfaces.Translator = analyze.DisabledTranslator{}
	if cfg.TranslationEnabled() {
		translator = analyze.NewHTTPTranslator(cfg.TranslateEndpoint, cfg.TranslateAPIKey, log)
	}

	var sink interfaces.AnalyticsSink = analytics.NoopSink{}
	if cfg.AnalyticsDBPath != "" {
		sqlSink, err := analytics.NewSQLiteSink(cfg.AnalyticsDBPath)
		if err != nil {
			return nil, nil, err
		}
		sink = sqlSink
	}

	converter := convert.NewConverter(cfg.SofficePath, store.UploadDir, log)
	router := convert.NewRouter(converter)
	synthesizer := document.NewSynthesizer()

	orch := pipeline.NewOrchestrator(
		extractor, selector, classifier, detector, translator, synthesizer, sink, store, log)

	var gateway *billing.Gateway
	var billingStore *billing.Store
	if cfg.BillingEnabled() {
		billingStore, err = billing.NewStore(cfg.BillingDBPath)
		if err != nil {
			sink.Close()
			return nil, nil, err
		}
		gateway = billing.NewGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret,
			cfg.ProPlanPriceINR, cfg.ProPlanPriceUSD, billingStore, log)
	}

	srv := server.New(server.Deps{
		Config:     cfg,
		Store:      store,
		Router:     router,
		Extractor:  extractor,
		Engines:    selector,
		Classifier: classifier,
		Detector:   detector,
		Translator: translator,
		Orch:       orch,
		Sink:       sink,
		Gateway:    gateway,
		Billing:    billingStore,
		Log:        log,
	})

	cleanup := func() {
		if err := sink.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close analytics sink")
		}
		if billingStore != nil {
			if err := billingStore.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close billing store")
			}
		}
	}
	return srv, cleanup, nil
}
