package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aoqbot/internal/domain"
	"aoqbot/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	qrcode "github.com/skip2/go-qrcode"
)

const qrImageSize = 512

// QRTask — пакет специалистов на генерацию QR-кодов.
type QRTask struct {
	SpecialistIDs []string  `json:"specialist_ids"`
	AdminChatID   int64     `json:"admin_chat_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// QRWorker генерирует QR-коды для deep-link'ов специалистов в фоне.
// Картинка загружается в Telegram один раз, дальше переиспользуется
// по file_id. Очередь живет в Redis; при его недоступности — в памяти.
type QRWorker struct {
	repo          domain.Repository
	telegram      domain.TelegramService
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan QRTask
	redisQueueKey string
	logger        *zerolog.Logger
}

func NewQRWorker(repo domain.Repository, telegram domain.TelegramService, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *QRWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &QRWorker{
		repo:          repo,
		telegram:      telegram,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan QRTask, models.WorkerQueueSize),
		redisQueueKey: "qr:queue",
		logger:        logger,
	}
}

// Enqueue ставит пакет в очередь. Telegram ограничивает частоту отправки,
// поэтому генерация не выполняется в обработчике импорта.
func (w *QRWorker) Enqueue(ctx context.Context, specialistIDs []string, adminChatID int64) error {
	if len(specialistIDs) == 0 {
		return nil
	}

	task := QRTask{
		SpecialistIDs: specialistIDs,
		AdminChatID:   adminChatID,
		CreatedAt:     time.Now(),
	}

	if w.redis != nil {
		data, err := json.Marshal(task)
		if err != nil {
			return fmt.Errorf("encode qr task: %w", err)
		}
		if err := w.redis.LPush(ctx, w.redisQueueKey, data).Err(); err == nil {
			return nil
		} else {
			w.logger.Warn().Err(err).Msg("qr_worker: redis push failed, fallback to memory queue")
		}
	}

	select {
	case w.queue <- task:
		return nil
	default:
		return errors.New("qr queue is full")
	}
}

// Start запускает основной цикл; останавливается по ctx.
func (w *QRWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("qr_worker: started")
	defer w.logger.Info().Msg("qr_worker: stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case task := <-w.queue:
			w.processTask(ctx, task)
		default:
		}

		if task, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, task)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case task := <-w.queue:
			w.processTask(ctx, task)
		case <-time.After(time.Second):
		}
	}
}

func (w *QRWorker) tryRedis(ctx context.Context) (QRTask, bool) {
	if w.redis == nil {
		return QRTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			w.logger.Error().Err(err).Msg("qr_worker: redis BRPOP error")
		}
		return QRTask{}, false
	}
	if len(res) != 2 {
		return QRTask{}, false
	}
	var task QRTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("qr_worker: decode redis task")
		return QRTask{}, false
	}
	return task, true
}

func (w *QRWorker) processTask(ctx context.Context, task QRTask) {
	var done, skipped, failed int

	for _, id := range task.SpecialistIDs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		switch err := w.generateOne(ctx, id, task.AdminChatID); {
		case err == nil:
			done++
		case errors.Is(err, errQRNotNeeded):
			skipped++
		default:
			w.logger.Error().Err(err).Str("specialist_id", id).Msg("qr_worker: generation failed")
			failed++
		}
	}

	summary := fmt.Sprintf("QR-коды готовы.\nСоздано: %d\nПропущено: %d\nОшибок: %d", done, skipped, failed)
	if _, err := w.telegram.SendMessage(task.AdminChatID, summary); err != nil {
		w.logger.Error().Err(err).Msg("qr_worker: failed to report summary")
	}
}

var errQRNotNeeded = errors.New("qr not needed")

// generateOne создает QR и сохраняет file_id. Специалист без ссылки или
// с уже готовым кодом пропускается.
func (w *QRWorker) generateOne(ctx context.Context, specialistID string, chatID int64) error {
	sp, err := w.repo.GetSpecialist(ctx, specialistID)
	if err != nil {
		return err
	}
	if sp.Link == "" || sp.QR != "" {
		return errQRNotNeeded
	}

	png, err := qrcode.Encode(sp.Link, qrcode.Medium, qrImageSize)
	if err != nil {
		return fmt.Errorf("encode qr: %w", err)
	}

	fileID, err := w.uploadWithRetry(ctx, chatID, sp.Fullname, png)
	if err != nil {
		return err
	}

	return w.repo.UpdateSpecialistQR(ctx, specialistID, fileID)
}

// uploadWithRetry отправляет картинку админу, забирает file_id и удаляет
// служебное сообщение из чата.
func (w *QRWorker) uploadWithRetry(ctx context.Context, chatID int64, name string, png []byte) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		msg, err := w.telegram.SendPhotoBytes(chatID, fmt.Sprintf("qr_%s.png", name), png)
		if err == nil {
			if len(msg.Photo) == 0 {
				return "", errors.New("telegram response has no photo sizes")
			}
			fileID := msg.Photo[len(msg.Photo)-1].FileID
			if err := w.telegram.DeleteMessage(chatID, msg.MessageID); err != nil {
				w.logger.Warn().Err(err).Msg("qr_worker: failed to delete upload message")
			}
			return fileID, nil
		}

		lastErr = err
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(w.retryPolicy.NextDelay(attempt)):
		}
	}
	return "", fmt.Errorf("upload qr after %d attempts: %w", w.retryPolicy.MaxRetries, lastErr)
}
