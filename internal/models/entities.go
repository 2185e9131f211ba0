package models

import (
	"database/sql"
	"time"
)

// User хранит данные о пользователе бота.
type User struct {
	ID                  string
	TgID                int64 // Уникальный ID Telegram
	Username            string
	FullName            string
	Role                string // user, admin, moderator, banned
	SocialSubcategoryID sql.NullString
	CreatedAt           time.Time
	ModifiedAt          time.Time
}

// IsStaff сообщает, доступны ли пользователю административные разделы.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleModerator
}

// Specialist — специалист, работу которого оценивают граждане.
// Натуральный ключ для импорта: (организация, должность, ФИО, отдел).
type Specialist struct {
	ID           string
	Organization string
	Position     string
	Fullname     string
	Department   string
	Link         string // deep-link на оценку, проставляется после создания
	QR           string // file_id сгенерированного QR-кода
	CreatedAt    time.Time
	ModifiedAt   time.Time
}

// Service — услуга, к которой может быть привязана оценка.
type Service struct {
	ID         string
	Name       string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// SocialCategory владеет списком подкатегорий; удаление категории
// каскадно удаляет подкатегории.
type SocialCategory struct {
	ID            string
	Name          string
	Subcategories []SocialSubcategory
	CreatedAt     time.Time
	ModifiedAt    time.Time
}

type SocialSubcategory struct {
	ID         string
	Name       string
	CategoryID string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// AssessmentOfQuality (AOQ) — оценка качества 1-5. Комментарий
// прикрепляется отдельным шагом диалога после создания записи.
type AssessmentOfQuality struct {
	ID           string
	UserID       string
	SpecialistID string
	ServiceID    sql.NullString
	Score        int
	Comment      sql.NullString
	CreatedAt    time.Time
	ModifiedAt   time.Time
}

// NetPromoterScore — отложенная оценка 0-10, строго одна на AOQ.
type NetPromoterScore struct {
	ID         string
	UserID     string
	AOQID      string
	Score      int
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// AOQExportRow — строка листа AOQ в выгрузке статистики,
// с уже подтянутыми отображаемыми полями.
type AOQExportRow struct {
	ID             string
	Username       string
	UserFullName   string
	SocialCategory string
	Organization   string
	SpecialistName string
	Department     string
	Position       string
	ServiceName    string
	Score          int
	Comment        string
	CreatedAt      time.Time
}

// NPSExportRow — строка листа NPS в выгрузке статистики.
type NPSExportRow struct {
	ID             string
	Username       string
	UserFullName   string
	Organization   string
	SpecialistName string
	Score          int
	CreatedAt      time.Time
}
