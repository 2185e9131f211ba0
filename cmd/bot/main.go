package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"aoqbot/internal/bot"
	"aoqbot/internal/config"
	"aoqbot/internal/database"
	"aoqbot/internal/events"
	"aoqbot/internal/export"
	"aoqbot/internal/importer"
	"aoqbot/internal/logging"
	"aoqbot/internal/models"
	"aoqbot/internal/repository"
	"aoqbot/internal/service"
	"aoqbot/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, stateService := initStateService(ctx, cfg, &logger)

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug
	tgService := service.NewTelegramService(bot.NewBotWrapper(botAPI))

	retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
	qrWorker := worker.NewQRWorker(db, tgService, redisClient, retryPolicy, &logger)
	go qrWorker.Start(ctx)

	eventBus := events.NewEventBus()
	subscribeEvents(ctx, eventBus, qrWorker, &logger)

	loc := cfg.Location()
	assessmentService := service.NewAssessmentService(db, eventBus, cfg.CooldownWindow(), loc, &logger)
	userService := service.NewUserService(db, cfg, &logger)
	npsScheduler := service.NewNPSScheduler(stateService, tgService, cfg.NPSDelay(), &logger)
	defer npsScheduler.Stop()

	rosterImporter := importer.NewRosterImporter(db, botAPI.Self.UserName, &logger)
	taxonomyImporter := importer.NewTaxonomyImporter(db, &logger)
	excelExporter := export.NewExcelExporter(db, cfg.Exports.Path, &logger)
	wordExporter := export.NewWordExporter(db, cfg.Exports.Path, &logger)

	backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, loc, &logger)
	backupService.SetNotifier(func(text string) {
		admins, errAdmins := userService.GetAdmins(ctx)
		if errAdmins != nil {
			logger.Error().Err(errAdmins).Msg("Не удалось получить список администраторов")
			return
		}
		for _, admin := range admins {
			if _, errSend := tgService.SendMessage(admin.TgID, text); errSend != nil {
				logger.Error().Err(errSend).Int64("tg_id", admin.TgID).Msg("Не удалось уведомить администратора")
			}
		}
	})
	if cfg.Backup.Enabled {
		go backupService.Start(ctx)
	}

	metrics := bot.NewMetrics()
	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	telegramBot, err := bot.NewBot(
		tgService, cfg, stateService, userService, assessmentService,
		db, npsScheduler, qrWorker, eventBus,
		rosterImporter, taxonomyImporter, excelExporter, wordExporter,
		backupService, metrics, &logger,
	)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания бота")
		return err
	}

	go telegramBot.StartWeeklyStats(ctx)

	logger.Info().Msg("Бот запущен...")
	telegramBot.Start(ctx)

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
		return err
	}
	if cfg.Backup.Enabled {
		if err := os.MkdirAll(cfg.Backup.StoragePath, 0o755); err != nil {
			logger.Error().Err(err).Msg("Ошибка создания директории для бэкапов")
			return err
		}
	}
	return nil
}

func initStateService(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *service.StateService) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	primaryRepo := repository.NewRedisStateRepository(redisClient, time.Duration(models.DefaultRedisTTL)*time.Second)
	fallbackRepo := repository.NewMemoryStateRepository(time.Duration(models.DefaultRedisTTL) * time.Second)
	stateRepo := repository.NewFailoverStateRepository(primaryRepo, fallbackRepo, logger)
	return redisClient, service.NewStateService(stateRepo, logger)
}

// subscribeEvents связывает шину событий с фоновыми обработчиками:
// импорт специалистов порождает пакет задач на генерацию QR.
func subscribeEvents(ctx context.Context, bus *events.EventBus, qrWorker *worker.QRWorker, logger *zerolog.Logger) {
	bus.Subscribe(events.EventSpecialistsImported, func(ev *events.Event) error {
		var payload events.ImportEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		if err := qrWorker.Enqueue(ctx, payload.CreatedIDs, payload.AdminTgID); err != nil {
			logger.Error().Err(err).Msg("event bus: enqueue qr tasks")
		}
		return nil
	})

	bus.Subscribe(events.EventAOQCreated, func(ev *events.Event) error {
		var payload events.AOQEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		logger.Info().
			Str("aoq_id", payload.AOQID).
			Str("specialist", payload.SpecialistName).
			Int("score", payload.Score).
			Msg("Новая оценка качества")
		return nil
	})
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
