package models

const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleBanned    = "banned"
)

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

// Состояния диалога оценки качества
const (
	StateAwaitingSocialCategory     = "awaiting_social_category"
	StateAwaitingServiceSelection   = "awaiting_service_selection"
	StateAwaitingQualityScore       = "awaiting_quality_score"
	StateAwaitingImprovementComment = "awaiting_improvement_comment"
	StateAwaitingSatisfactionScore  = "awaiting_satisfaction_score"
)

// Состояния административных диалогов
const (
	StateAwaitingUsername        = "awaiting_username"
	StateAwaitingBroadcastText   = "awaiting_broadcast_text"
	StateAwaitingSpecialistName  = "awaiting_specialist_name"
	StateAwaitingSpecialistOrg   = "awaiting_specialist_org"
	StateAwaitingSpecialistDept  = "awaiting_specialist_dept"
	StateAwaitingSpecialistPos   = "awaiting_specialist_pos"
	StateAwaitingSearchQuery     = "awaiting_search_query"
	StateAwaitingRosterImport    = "awaiting_roster_import"
	StateAwaitingTaxonomyImport  = "awaiting_taxonomy_import"
	StateAwaitingServiceImport   = "awaiting_service_import"
	StateAwaitingServiceName     = "awaiting_service_name"
	StateAwaitingCategoryName    = "awaiting_category_name"
	StateAwaitingSubcategoryName = "awaiting_subcategory_name"
)

const (
	// DefaultRedisTTL время жизни состояния пользователя в Redis
	DefaultRedisTTL = 24 * 60 * 60 // 24 часа в секундах

	// DefaultCooldownDays окно, в течение которого повторная оценка запрещена
	DefaultCooldownDays = 7

	// DefaultNPSDelayMinutes задержка перед запросом NPS после оценки
	DefaultNPSDelayMinutes = 10

	// DefaultBroadcastIntervalMs пауза между отправками при рассылке
	DefaultBroadcastIntervalMs = 70

	// BroadcastProgressEvery шаг обновления прогресса рассылки
	BroadcastProgressEvery = 10

	// DefaultPaginationSize размер пагинации по умолчанию
	DefaultPaginationSize = 8

	// DefaultBackupKeepLatest количество хранимых бэкапов
	DefaultBackupKeepLatest = 7

	// WorkerQueueSize размер очереди QR-воркера
	WorkerQueueSize = 128

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений в секундах
	RateLimitWindow = 60

	// Границы оценки качества
	QualityScoreMin = 1
	QualityScoreMax = 5

	// Границы оценки NPS
	NPSScoreMin = 0
	NPSScoreMax = 10
)
