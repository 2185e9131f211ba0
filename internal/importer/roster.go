package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"aoqbot/internal/database"
	"aoqbot/internal/domain"
	"aoqbot/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const rosterSheet = "Специалисты"

var rosterHeaders = []string{"Организация", "Должность", "ФИО", "Отдел"}

var (
	// ErrNoRosterSheet — в книге нет листа со специалистами.
	ErrNoRosterSheet = errors.New("roster sheet not found")

	// ErrBadRosterHeader — первая строка листа не совпадает с ожидаемой.
	ErrBadRosterHeader = errors.New("unexpected roster header row")
)

// RosterResult — итог импорта ростера.
type RosterResult struct {
	Total      int
	CreatedIDs []string
	Skipped    int
}

// RosterImporter выполняет идемпотентный импорт специалистов из Excel:
// существующие записи (по натуральному ключу) пропускаются, новые
// создаются и получают deep-link на оценку.
type RosterImporter struct {
	repo        domain.Repository
	botUsername string
	logger      *zerolog.Logger
}

func NewRosterImporter(repo domain.Repository, botUsername string, logger *zerolog.Logger) *RosterImporter {
	return &RosterImporter{
		repo:        repo,
		botUsername: botUsername,
		logger:      logger,
	}
}

func (i *RosterImporter) Import(ctx context.Context, r io.Reader) (*RosterResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(rosterSheet)
	if err != nil {
		return nil, ErrNoRosterSheet
	}
	if len(rows) == 0 || !headerMatches(rows[0]) {
		return nil, ErrBadRosterHeader
	}

	result := &RosterResult{}
	for _, row := range rows[1:] {
		org, pos, name, dept := cell(row, 0), cell(row, 1), cell(row, 2), cell(row, 3)
		if org == "" && pos == "" && name == "" && dept == "" {
			continue
		}
		if org == "" || pos == "" || name == "" {
			i.logger.Warn().Strs("row", row).Msg("Строка ростера пропущена: не заполнены обязательные поля")
			result.Skipped++
			continue
		}
		result.Total++

		_, err := i.repo.FindSpecialistByNaturalKey(ctx, org, pos, name, dept)
		if err == nil {
			result.Skipped++
			continue
		}
		if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}

		sp := &models.Specialist{
			Organization: org,
			Position:     pos,
			Fullname:     name,
			Department:   dept,
		}
		if err := i.repo.CreateSpecialist(ctx, sp); err != nil {
			return nil, fmt.Errorf("failed to import specialist %q: %w", name, err)
		}

		// Ссылка содержит ID, поэтому проставляется вторым шагом
		link := fmt.Sprintf("https://t.me/%s?start=%s", i.botUsername, sp.ID)
		if err := i.repo.UpdateSpecialistLink(ctx, sp.ID, link); err != nil {
			return nil, err
		}

		result.CreatedIDs = append(result.CreatedIDs, sp.ID)
	}

	i.logger.Info().
		Int("total", result.Total).
		Int("created", len(result.CreatedIDs)).
		Int("skipped", result.Skipped).
		Msg("Импорт ростера завершен")

	return result, nil
}

func headerMatches(row []string) bool {
	if len(row) < len(rosterHeaders) {
		return false
	}
	for n, want := range rosterHeaders {
		if !strings.EqualFold(strings.TrimSpace(row[n]), want) {
			return false
		}
	}
	return true
}

func cell(row []string, n int) string {
	if n >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[n])
}
