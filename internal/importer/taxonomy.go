package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"aoqbot/internal/domain"
	"aoqbot/internal/models"

	"github.com/rs/zerolog"
)

var (
	// ErrEmptyTaxonomy — файл распарсился, но не содержит ни одной категории.
	ErrEmptyTaxonomy = errors.New("taxonomy file contains no categories")

	// ErrEmptyServices — файл не содержит ни одной услуги.
	ErrEmptyServices = errors.New("services file contains no entries")
)

type taxonomyCategory struct {
	Name          string `json:"name"`
	Subcategories []struct {
		Name string `json:"name"`
	} `json:"subcategories"`
}

type serviceEntry struct {
	Name string `json:"name"`
}

// TaxonomyImporter заменяет справочники целиком: сначала полный разбор
// файла, и только потом удаление старых записей. Битый файл не оставляет
// справочник пустым.
type TaxonomyImporter struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewTaxonomyImporter(repo domain.Repository, logger *zerolog.Logger) *TaxonomyImporter {
	return &TaxonomyImporter{repo: repo, logger: logger}
}

// ImportCategories читает JSON с социальными категориями и подкатегориями
// и замещает ими текущий справочник.
func (i *TaxonomyImporter) ImportCategories(ctx context.Context, r io.Reader) (int, int, error) {
	var entries []taxonomyCategory
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return 0, 0, fmt.Errorf("failed to parse taxonomy file: %w", err)
	}
	if len(entries) == 0 {
		return 0, 0, ErrEmptyTaxonomy
	}
	for _, c := range entries {
		if c.Name == "" {
			return 0, 0, fmt.Errorf("failed to parse taxonomy file: category without name")
		}
	}

	if err := i.repo.DeleteAllSocialCategories(ctx); err != nil {
		return 0, 0, err
	}

	var categories, subcategories int
	for _, c := range entries {
		category := &models.SocialCategory{Name: c.Name}
		if err := i.repo.CreateSocialCategory(ctx, category); err != nil {
			return categories, subcategories, err
		}
		categories++

		for _, s := range c.Subcategories {
			sub := &models.SocialSubcategory{Name: s.Name, CategoryID: category.ID}
			if err := i.repo.CreateSocialSubcategory(ctx, sub); err != nil {
				return categories, subcategories, err
			}
			subcategories++
		}
	}

	i.logger.Info().Int("categories", categories).Int("subcategories", subcategories).Msg("Справочник категорий заменен")
	return categories, subcategories, nil
}

// ImportServices читает JSON со списком услуг и замещает им справочник.
func (i *TaxonomyImporter) ImportServices(ctx context.Context, r io.Reader) (int, error) {
	var entries []serviceEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return 0, fmt.Errorf("failed to parse services file: %w", err)
	}
	if len(entries) == 0 {
		return 0, ErrEmptyServices
	}

	if err := i.repo.DeleteAllServices(ctx); err != nil {
		return 0, err
	}

	var count int
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		if err := i.repo.CreateService(ctx, &models.Service{Name: e.Name}); err != nil {
			return count, err
		}
		count++
	}

	i.logger.Info().Int("services", count).Msg("Справочник услуг заменен")
	return count, nil
}
