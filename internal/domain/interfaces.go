package domain

import (
	"context"
	"time"

	"aoqbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Repository — контракт хранилища сущностей.
type Repository interface {
	// Пользователи
	GetUserByTgID(ctx context.Context, tgID int64) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUserIdentity(ctx context.Context, tgID int64, username, fullName string) error
	UpdateUserRole(ctx context.Context, tgID int64, role string) error
	UpdateUserRoleByUsername(ctx context.Context, username, role string) error
	UpdateUserSubcategory(ctx context.Context, tgID int64, subcategoryID string) error
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	GetUsersByRole(ctx context.Context, role string) ([]*models.User, error)

	// Специалисты
	GetSpecialist(ctx context.Context, id string) (*models.Specialist, error)
	FindSpecialistByNaturalKey(ctx context.Context, organization, position, fullname, department string) (*models.Specialist, error)
	CreateSpecialist(ctx context.Context, s *models.Specialist) error
	UpdateSpecialistLink(ctx context.Context, id, link string) error
	UpdateSpecialistQR(ctx context.Context, id, fileID string) error
	DeleteSpecialist(ctx context.Context, id string) error
	GetAllSpecialists(ctx context.Context) ([]*models.Specialist, error)
	GetSpecialistsByOrganization(ctx context.Context, organization string) ([]*models.Specialist, error)
	GetOrganizations(ctx context.Context) ([]string, error)
	SearchSpecialists(ctx context.Context, query string) ([]*models.Specialist, error)

	// Услуги
	GetService(ctx context.Context, id string) (*models.Service, error)
	CreateService(ctx context.Context, s *models.Service) error
	DeleteService(ctx context.Context, id string) error
	DeleteAllServices(ctx context.Context) error
	GetAllServices(ctx context.Context) ([]*models.Service, error)

	// Социальные категории
	CreateSocialCategory(ctx context.Context, c *models.SocialCategory) error
	CreateSocialSubcategory(ctx context.Context, s *models.SocialSubcategory) error
	GetSocialCategory(ctx context.Context, id string) (*models.SocialCategory, error)
	GetSocialSubcategory(ctx context.Context, id string) (*models.SocialSubcategory, error)
	GetAllSocialCategories(ctx context.Context) ([]*models.SocialCategory, error)
	GetSubcategoriesByCategory(ctx context.Context, categoryID string) ([]*models.SocialSubcategory, error)
	DeleteSocialCategory(ctx context.Context, id string) error
	DeleteSocialSubcategory(ctx context.Context, id string) error
	DeleteAllSocialCategories(ctx context.Context) error

	// Оценки
	CreateAOQ(ctx context.Context, aoq *models.AssessmentOfQuality) error
	GetAOQ(ctx context.Context, id string) (*models.AssessmentOfQuality, error)
	UpdateAOQComment(ctx context.Context, id, comment string) error
	GetLatestAOQByUser(ctx context.Context, userID string) (*models.AssessmentOfQuality, error)
	GetAOQsSince(ctx context.Context, since time.Time) ([]*models.AssessmentOfQuality, error)
	CreateNPS(ctx context.Context, nps *models.NetPromoterScore) error
	GetNPSByAOQ(ctx context.Context, aoqID string) (*models.NetPromoterScore, error)
	GetNPSsSince(ctx context.Context, since time.Time) ([]*models.NetPromoterScore, error)
	GetAOQExportRows(ctx context.Context) ([]*models.AOQExportRow, error)
	GetNPSExportRows(ctx context.Context) ([]*models.NPSExportRow, error)
}

// StateRepository — низкоуровневое хранилище состояний диалога.
type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	// CompareAndSetState записывает state только если текущий шаг входит в
	// expectedSteps (пустая строка означает отсутствие состояния).
	// Возвращает false, если шаг уже изменился.
	CompareAndSetState(ctx context.Context, userID int64, expectedSteps []string, state *models.UserState) (bool, error)
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

// StateManager — сервисный слой над StateRepository.
type StateManager interface {
	GetUserState(ctx context.Context, userID int64) (*models.UserState, error)
	SetUserState(ctx context.Context, userID int64, step string, data map[string]interface{}) error
	SetUserStateIf(ctx context.Context, userID int64, expectedSteps []string, step string, data map[string]interface{}) (bool, error)
	ClearUserState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// TelegramSender — тонкая обертка над tgbotapi.BotAPI, чтобы бот
// можно было тестировать без сети.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// TelegramService — высокоуровневые операции отправки.
type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	DeleteMessage(chatID int64, messageID int) error
	CopyMessage(toChatID, fromChatID int64, messageID int) error
	SendDocument(chatID int64, path, caption string) error
	SendPhotoBytes(chatID int64, name string, data []byte) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// UserDirectory — операции над пользователями, нужные боту.
type UserDirectory interface {
	EnsureUser(ctx context.Context, tgID int64, username, fullName string) (*models.User, error)
	PromotePrivileged(ctx context.Context, tgID int64) error
	SetRoleByUsername(ctx context.Context, username, role string) error
	SetSubcategory(ctx context.Context, tgID int64, subcategoryID string) error
	GetByTgID(ctx context.Context, tgID int64) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	GetAdmins(ctx context.Context) ([]*models.User, error)
}

// AssessmentManager — ядро двухступенчатого протокола AOQ -> NPS.
type AssessmentManager interface {
	CanAssess(ctx context.Context, userID string, now time.Time) error
	CreateAssessment(ctx context.Context, userID, specialistID, serviceID string, score int) (*models.AssessmentOfQuality, error)
	AttachComment(ctx context.Context, aoqID, comment string) error
	CreateNPS(ctx context.Context, userID, aoqID string, score int) (*models.NetPromoterScore, error)
}

// QRWorker принимает пакеты специалистов на фоновую генерацию QR-кодов.
type QRWorker interface {
	Enqueue(ctx context.Context, specialistIDs []string, adminChatID int64) error
}

// NPSPlanner управляет отложенными запросами NPS с отменой по пользователю.
type NPSPlanner interface {
	Schedule(userTgID int64, aoqID string)
	Cancel(userTgID int64)
}
