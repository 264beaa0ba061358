package main

import (
	"context"
	"log/slog"
	"os"

	"campusnav/config"
	"campusnav/internal/delivery"
	"campusnav/internal/delivery/http"
	"campusnav/internal/delivery/http/middleware"
	"campusnav/internal/delivery/http/router/handler"
	"campusnav/internal/domain/service"
	"campusnav/internal/errors"
	"campusnav/internal/infra/directory"
	logs "campusnav/internal/infra/log"
	"campusnav/internal/infra/positioning"
	"campusnav/internal/infra/routing/osrm"
	"campusnav/internal/infra/speech"
	"campusnav/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			newPositioningProvider,
			newSpeechSynthesizer,
			osrm.NewRouteProvider,
			directory.NewMemoryDirectory,
		),
	)
}

// newPositioningProvider selects the positioning backend from configuration
func newPositioningProvider(cfg *config.Config, logger *slog.Logger) (service.PositioningProvider, error) {
	provider := "simulated"
	if cfg.Positioning != nil && cfg.Positioning.Provider != "" {
		provider = cfg.Positioning.Provider
	}

	switch provider {
	case "simulated":
		return positioning.NewSimulatedProvider(cfg, logger)
	default:
		return nil, errors.Errorf("unknown positioning provider: %s", provider)
	}
}

// newSpeechSynthesizer creates the speech backend used for voice guidance
func newSpeechSynthesizer(logger *slog.Logger) service.SpeechSynthesizer {
	return speech.NewLogSynthesizer(logger)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewSampleFilter,
			impl.NewPositionService,
			impl.NewVoiceService,
			impl.NewNavigationService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewLoggerMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewNavigationHandler,
			handler.NewVoiceHandler,
			handler.NewPositionHandler,
			handler.NewBuildingHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
