package importer

import (
	"context"
	"strings"
	"testing"

	"aoqbot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportCategories(t *testing.T) {
	db := setupTestDB(t)
	logger := zerolog.Nop()
	imp := NewTaxonomyImporter(db, &logger)
	ctx := context.Background()

	payload := `[
        {"name": "Пенсионеры", "subcategories": [{"name": "По возрасту"}, {"name": "По выслуге лет"}]},
        {"name": "Семьи", "subcategories": [{"name": "Многодетные"}]}
    ]`

	cats, subs, err := imp.ImportCategories(ctx, strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, 2, cats)
	assert.Equal(t, 3, subs)

	all, err := db.GetAllSocialCategories(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestImportCategoriesReplacesExisting(t *testing.T) {
	db := setupTestDB(t)
	logger := zerolog.Nop()
	imp := NewTaxonomyImporter(db, &logger)
	ctx := context.Background()

	require.NoError(t, db.CreateSocialCategory(ctx, &models.SocialCategory{Name: "Старая"}))

	_, _, err := imp.ImportCategories(ctx, strings.NewReader(`[{"name": "Новая"}]`))
	require.NoError(t, err)

	all, err := db.GetAllSocialCategories(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Новая", all[0].Name)
}

func TestImportCategoriesKeepsDataOnBadFile(t *testing.T) {
	db := setupTestDB(t)
	logger := zerolog.Nop()
	imp := NewTaxonomyImporter(db, &logger)
	ctx := context.Background()

	require.NoError(t, db.CreateSocialCategory(ctx, &models.SocialCategory{Name: "Старая"}))

	// Битый JSON не должен стереть справочник
	_, _, err := imp.ImportCategories(ctx, strings.NewReader(`[{broken`))
	assert.Error(t, err)

	_, _, err = imp.ImportCategories(ctx, strings.NewReader(`[]`))
	assert.ErrorIs(t, err, ErrEmptyTaxonomy)

	all, err := db.GetAllSocialCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// Формат из подсказки администратору: список объектов без обертки.
func TestImportCategoriesAcceptsAdvertisedFormat(t *testing.T) {
	db := setupTestDB(t)
	logger := zerolog.Nop()
	imp := NewTaxonomyImporter(db, &logger)
	ctx := context.Background()

	cats, subs, err := imp.ImportCategories(ctx,
		strings.NewReader(`[{"name": "Пенсионеры", "subcategories": [{"name": "По возрасту"}]}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, cats)
	assert.Equal(t, 1, subs)

	count, err := imp.ImportServices(ctx,
		strings.NewReader(`[{"name": "Паспорт"}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestImportServices(t *testing.T) {
	db := setupTestDB(t)
	logger := zerolog.Nop()
	imp := NewTaxonomyImporter(db, &logger)
	ctx := context.Background()

	require.NoError(t, db.CreateService(ctx, &models.Service{Name: "Старая услуга"}))

	count, err := imp.ImportServices(ctx, strings.NewReader(`[{"name": "Паспорт"}, {"name": "Регистрация"}, {"name": ""}]`))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	all, err := db.GetAllServices(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestImportServicesEmpty(t *testing.T) {
	db := setupTestDB(t)
	logger := zerolog.Nop()
	imp := NewTaxonomyImporter(db, &logger)

	_, err := imp.ImportServices(context.Background(), strings.NewReader(`[]`))
	assert.ErrorIs(t, err, ErrEmptyServices)
}
