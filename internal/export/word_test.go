package export

import (
	"context"
	"testing"

	"aoqbot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordExport(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	sp := &models.Specialist{
		Organization: "МФЦ Центральный",
		Position:     "Специалист",
		Fullname:     "Иванова Анна",
		Department:   "Отдел приема",
	}
	require.NoError(t, db.CreateSpecialist(ctx, sp))
	require.NoError(t, db.UpdateSpecialistLink(ctx, sp.ID, "https://t.me/aoq_test_bot?start="+sp.ID))

	logger := zerolog.Nop()
	exporter := NewWordExporter(db, t.TempDir(), &logger)

	path, err := exporter.Export(ctx, "")
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestWordExportByOrganization(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, s := range []*models.Specialist{
		{Organization: "МФЦ Северный", Position: "Специалист", Fullname: "Петров"},
		{Organization: "МФЦ Южный", Position: "Специалист", Fullname: "Кузнецов"},
	} {
		require.NoError(t, db.CreateSpecialist(ctx, s))
	}

	logger := zerolog.Nop()
	exporter := NewWordExporter(db, t.TempDir(), &logger)

	path, err := exporter.Export(ctx, "МФЦ Северный")
	require.NoError(t, err)
	assert.FileExists(t, path)
}
