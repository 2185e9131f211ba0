package service

import (
	"context"
	"time"

	"aoqbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock of the domain.Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetUserByTgID(ctx context.Context, tgID int64) (*models.User, error) {
	args := m.Called(ctx, tgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) UpdateUserIdentity(ctx context.Context, tgID int64, username, fullName string) error {
	args := m.Called(ctx, tgID, username, fullName)
	return args.Error(0)
}

func (m *MockRepository) UpdateUserRole(ctx context.Context, tgID int64, role string) error {
	args := m.Called(ctx, tgID, role)
	return args.Error(0)
}

func (m *MockRepository) UpdateUserRoleByUsername(ctx context.Context, username, role string) error {
	args := m.Called(ctx, username, role)
	return args.Error(0)
}

func (m *MockRepository) UpdateUserSubcategory(ctx context.Context, tgID int64, subcategoryID string) error {
	args := m.Called(ctx, tgID, subcategoryID)
	return args.Error(0)
}

func (m *MockRepository) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockRepository) GetUsersByRole(ctx context.Context, role string) ([]*models.User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockRepository) GetSpecialist(ctx context.Context, id string) (*models.Specialist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Specialist), args.Error(1)
}

func (m *MockRepository) FindSpecialistByNaturalKey(ctx context.Context, organization, position, fullname, department string) (*models.Specialist, error) {
	args := m.Called(ctx, organization, position, fullname, department)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Specialist), args.Error(1)
}

func (m *MockRepository) CreateSpecialist(ctx context.Context, s *models.Specialist) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockRepository) UpdateSpecialistLink(ctx context.Context, id, link string) error {
	args := m.Called(ctx, id, link)
	return args.Error(0)
}

func (m *MockRepository) UpdateSpecialistQR(ctx context.Context, id, fileID string) error {
	args := m.Called(ctx, id, fileID)
	return args.Error(0)
}

func (m *MockRepository) DeleteSpecialist(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) GetAllSpecialists(ctx context.Context) ([]*models.Specialist, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Specialist), args.Error(1)
}

func (m *MockRepository) GetSpecialistsByOrganization(ctx context.Context, organization string) ([]*models.Specialist, error) {
	args := m.Called(ctx, organization)
	return args.Get(0).([]*models.Specialist), args.Error(1)
}

func (m *MockRepository) GetOrganizations(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) SearchSpecialists(ctx context.Context, query string) ([]*models.Specialist, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]*models.Specialist), args.Error(1)
}

func (m *MockRepository) GetService(ctx context.Context, id string) (*models.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *MockRepository) CreateService(ctx context.Context, s *models.Service) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockRepository) DeleteService(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) DeleteAllServices(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRepository) GetAllServices(ctx context.Context) ([]*models.Service, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Service), args.Error(1)
}

func (m *MockRepository) CreateSocialCategory(ctx context.Context, c *models.SocialCategory) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockRepository) CreateSocialSubcategory(ctx context.Context, s *models.SocialSubcategory) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockRepository) GetSocialCategory(ctx context.Context, id string) (*models.SocialCategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SocialCategory), args.Error(1)
}

func (m *MockRepository) GetSocialSubcategory(ctx context.Context, id string) (*models.SocialSubcategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SocialSubcategory), args.Error(1)
}

func (m *MockRepository) GetAllSocialCategories(ctx context.Context) ([]*models.SocialCategory, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.SocialCategory), args.Error(1)
}

func (m *MockRepository) GetSubcategoriesByCategory(ctx context.Context, categoryID string) ([]*models.SocialSubcategory, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]*models.SocialSubcategory), args.Error(1)
}

func (m *MockRepository) DeleteSocialCategory(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) DeleteSocialSubcategory(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) DeleteAllSocialCategories(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRepository) CreateAOQ(ctx context.Context, aoq *models.AssessmentOfQuality) error {
	args := m.Called(ctx, aoq)
	return args.Error(0)
}

func (m *MockRepository) GetAOQ(ctx context.Context, id string) (*models.AssessmentOfQuality, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AssessmentOfQuality), args.Error(1)
}

func (m *MockRepository) UpdateAOQComment(ctx context.Context, id, comment string) error {
	args := m.Called(ctx, id, comment)
	return args.Error(0)
}

func (m *MockRepository) GetLatestAOQByUser(ctx context.Context, userID string) (*models.AssessmentOfQuality, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AssessmentOfQuality), args.Error(1)
}

func (m *MockRepository) GetAOQsSince(ctx context.Context, since time.Time) ([]*models.AssessmentOfQuality, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]*models.AssessmentOfQuality), args.Error(1)
}

func (m *MockRepository) CreateNPS(ctx context.Context, nps *models.NetPromoterScore) error {
	args := m.Called(ctx, nps)
	return args.Error(0)
}

func (m *MockRepository) GetNPSByAOQ(ctx context.Context, aoqID string) (*models.NetPromoterScore, error) {
	args := m.Called(ctx, aoqID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NetPromoterScore), args.Error(1)
}

func (m *MockRepository) GetNPSsSince(ctx context.Context, since time.Time) ([]*models.NetPromoterScore, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]*models.NetPromoterScore), args.Error(1)
}

func (m *MockRepository) GetAOQExportRows(ctx context.Context) ([]*models.AOQExportRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.AOQExportRow), args.Error(1)
}

func (m *MockRepository) GetNPSExportRows(ctx context.Context) ([]*models.NPSExportRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.NPSExportRow), args.Error(1)
}

// MockEventBus is a mock of domain.EventPublisher
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) PublishJSON(eventType string, payload interface{}) error {
	args := m.Called(eventType, payload)
	return args.Error(0)
}

// MockTelegram is a mock of domain.TelegramService
type MockTelegram struct {
	mock.Mock
}

func (m *MockTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *MockTelegram) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	args := m.Called(c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tgbotapi.APIResponse), args.Error(1)
}

func (m *MockTelegram) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	args := m.Called(chatID, text)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *MockTelegram) SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error) {
	args := m.Called(chatID, text, keyboard)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *MockTelegram) SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	args := m.Called(chatID, text, keyboard)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *MockTelegram) EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	args := m.Called(chatID, messageID, text, keyboard)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *MockTelegram) DeleteMessage(chatID int64, messageID int) error {
	args := m.Called(chatID, messageID)
	return args.Error(0)
}

func (m *MockTelegram) CopyMessage(toChatID, fromChatID int64, messageID int) error {
	args := m.Called(toChatID, fromChatID, messageID)
	return args.Error(0)
}

func (m *MockTelegram) SendDocument(chatID int64, path, caption string) error {
	args := m.Called(chatID, path, caption)
	return args.Error(0)
}

func (m *MockTelegram) SendPhotoBytes(chatID int64, name string, data []byte) (tgbotapi.Message, error) {
	args := m.Called(chatID, name, data)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *MockTelegram) AnswerCallback(callbackID, text string) error {
	args := m.Called(callbackID, text)
	return args.Error(0)
}

func (m *MockTelegram) GetFileDirectURL(fileID string) (string, error) {
	args := m.Called(fileID)
	return args.String(0), args.Error(1)
}

func (m *MockTelegram) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	args := m.Called(config)
	return args.Get(0).(tgbotapi.UpdatesChannel)
}

func (m *MockTelegram) GetSelf() tgbotapi.User {
	args := m.Called()
	return args.Get(0).(tgbotapi.User)
}

func (m *MockTelegram) StopReceivingUpdates() {
	m.Called()
}
