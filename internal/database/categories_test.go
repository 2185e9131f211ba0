package database

import (
	"context"
	"testing"

	"aoqbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocialCategoryTree(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	cat := &models.SocialCategory{Name: "Пенсионеры"}
	require.NoError(t, db.CreateSocialCategory(ctx, cat))

	sub1 := &models.SocialSubcategory{Name: "По возрасту", CategoryID: cat.ID}
	sub2 := &models.SocialSubcategory{Name: "По выслуге лет", CategoryID: cat.ID}
	require.NoError(t, db.CreateSocialSubcategory(ctx, sub1))
	require.NoError(t, db.CreateSocialSubcategory(ctx, sub2))

	cats, err := db.GetAllSocialCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)

	subs, err := db.GetSubcategoriesByCategory(ctx, cat.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	err = db.CreateSocialCategory(ctx, &models.SocialCategory{Name: "Пенсионеры"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestDeleteSocialCategoryCascade(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	cat := &models.SocialCategory{Name: "Семьи"}
	require.NoError(t, db.CreateSocialCategory(ctx, cat))
	sub := &models.SocialSubcategory{Name: "Многодетные", CategoryID: cat.ID}
	require.NoError(t, db.CreateSocialSubcategory(ctx, sub))

	require.NoError(t, db.DeleteSocialCategory(ctx, cat.ID))

	_, err := db.GetSocialSubcategory(ctx, sub.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAllSocialCategories(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	cat := &models.SocialCategory{Name: "Семьи"}
	require.NoError(t, db.CreateSocialCategory(ctx, cat))
	require.NoError(t, db.CreateSocialSubcategory(ctx, &models.SocialSubcategory{Name: "Многодетные", CategoryID: cat.ID}))

	require.NoError(t, db.DeleteAllSocialCategories(ctx))

	cats, err := db.GetAllSocialCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)

	subs, err := db.GetSubcategoriesByCategory(ctx, cat.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}
