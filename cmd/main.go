package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"ppe-gate/config"
	telegram "ppe-gate/internal/api"
	"ppe-gate/internal/api/rest"
	"ppe-gate/internal/container"
	"ppe-gate/internal/domain/port"
	"ppe-gate/internal/infrastructure/messaging"
	"ppe-gate/internal/infrastructure/replay"
	"ppe-gate/internal/infrastructure/storage"
	"ppe-gate/internal/infrastructure/vision"
	"ppe-gate/internal/logging"
	"ppe-gate/internal/timeutil"
)

const (
	frameBuffer     = 8
	shutdownTimeout = 10 * time.Second
)

func main() {
	replayPath := flag.String("replay", "", "path to a recorded session (JSONL); overrides REPLAY_PATH")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if *replayPath != "" {
		cfg.ReplayPath = *replayPath
	}

	logging.Setup(cfg)
	logger := logging.NewServiceLogger(cfg, "ppe-gate")

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Детектор СИЗ: сеть YOLO, если собрана с gocv, иначе только записанные детекции
	var fallback port.PPEDetector
	yolo, err := vision.NewYOLODetector(vision.DetectorConfig{
		ModelConfig:  cfg.ModelConfig,
		ModelWeights: cfg.ModelWeights,
		Confidence:   cfg.DetectConfidence,
		NMS:          cfg.DetectNMS,
		InputSize:    cfg.DetectInput,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("YOLO detector is not available, using recorded detections only")
	} else {
		defer yolo.Close()
		fallback = yolo
	}
	detector := replay.NewDetector(fallback)

	var clock timeutil.Clock = timeutil.RealClock{}
	var mockClock *timeutil.MockClock
	if cfg.ReplayPath != "" {
		mockClock = timeutil.NewMockClock(time.Time{})
		clock = mockClock
	}

	c, err := container.New(storage.NewMemoryOperatorRepository(), detector, cfg.RequiredPPE, cfg.Gate(), clock, logging.NewServiceLogger(cfg, "inspection"))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build services")
	}

	// Журнал проходов
	var history port.PassHistory
	if cfg.DBPath != "" {
		store, err := storage.OpenSQLitePassStore(cfg.DBPath, logging.NewServiceLogger(cfg, "storage"))
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open pass store")
		}
		defer store.Close()
		c.InspectionService.AddRecorder(store)
		history = store
	}

	// Архив кадров для дообучения
	if cfg.ArchiveDir != "" {
		var annotator port.FrameAnnotator
		if a, err := vision.NewAnnotator(); err == nil {
			annotator = a
		}
		archive, err := storage.NewFileArchive(cfg.ArchiveDir, annotator)
		if err != nil {
			logger.Fatal().Err(err).Str("dir", cfg.ArchiveDir).Msg("Failed to open frame archive")
		}
		c.InspectionService.AddRecorder(archive)
	}

	// NATS: события гейта, итоги проходов и входящие кадры
	var bus *messaging.Publisher
	if cfg.NatsURL != "" {
		bus, err = messaging.Connect(messaging.Options{
			URL:            cfg.NatsURL,
			Subject:        cfg.NatsSubject,
			ConnectTimeout: cfg.NatsConnectTimeout,
			ReconnectWait:  cfg.NatsReconnectWait,
			MaxReconnects:  cfg.NatsMaxReconnects,
		}, logging.NewServiceLogger(cfg, "nats"))
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to NATS")
		}
		defer bus.Shutdown(context.Background())
		c.InspectionService.AddNotifier(bus)
	}

	if cfg.ReplayPath != "" {
		runReplay(ctx, cfg, c, mockClock, detector)
		return
	}

	if bus == nil {
		logger.Fatal().Msg("NATS_URL is required in live mode: pose frames arrive over NATS")
	}
	runLive(ctx, cfg, c, bus, detector, history)
}

func runReplay(ctx context.Context, cfg *config.Config, c *container.Container, clock *timeutil.MockClock, detector *replay.Detector) {
	logger := logging.NewServiceLogger(cfg, "replay")

	src, err := replay.Open(cfg.ReplayPath, replay.Options{MinVisibility: cfg.ReplayMinVisibility})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open recording")
	}
	defer src.Close()

	logger.Info().Str("path", cfg.ReplayPath).Str("required", c.Session.Required().String()).Msg("Replaying recording")
	stats, err := replay.Play(ctx, src, clock, detector, c.InspectionService, logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Int("frames", stats.Frames).Msg("Replay stopped")
		os.Exit(1)
	}

	logger.Info().
		Int("frames", stats.Frames).
		Int("passes", stats.Passes).
		Int("aborted", stats.Aborted).
		Interface("decisions", stats.Decisions).
		Msg("Replay finished")
}

func runLive(ctx context.Context, cfg *config.Config, c *container.Container, bus *messaging.Publisher, detector *replay.Detector, history port.PassHistory) {
	logger := logging.NewServiceLogger(cfg, "ppe-gate")

	frames, unsubscribe, err := bus.SubscribeFrames(&messaging.FrameDecoder{
		MinVisibility: cfg.ReplayMinVisibility,
		Clock:         c.Clock,
	}, detector, frameBuffer)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to subscribe to frames")
	}
	defer unsubscribe()

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, telegram.Deps{
			Operators: c.OperatorService,
			Session:   c.Session,
			Board:     c.Board,
			History:   history,
			Clock:     c.Clock,
		}, logging.NewServiceLogger(cfg, "telegram"))
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create bot")
		}
		c.InspectionService.AddNotifier(bot)
		go func() {
			if err := bot.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("Bot stopped")
			}
		}()
	} else {
		logger.Info().Msg("TELEGRAM_TOKEN is empty, bot disabled")
	}

	var server *rest.Server
	if cfg.HTTPPort > 0 {
		server = rest.NewServer(rest.Deps{
			GateID:  cfg.GateID,
			Board:   c.Board,
			Session: c.Session,
			History: history,
			Clock:   c.Clock,
		}, logging.NewServiceLogger(cfg, "rest"))
		go func() {
			if err := server.Start(cfg.HTTPPort); err != nil {
				logger.Error().Err(err).Msg("REST API stopped")
			}
		}()
	}

	logger.Info().Str("required", c.Session.Required().String()).Msg("Gate is running...")
	if err := c.InspectionService.Run(ctx, frames); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Inspection loop stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if server != nil {
		if err := server.Stop(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("REST API shutdown")
		}
	}
	logger.Info().Msg("Gate stopped")
}
