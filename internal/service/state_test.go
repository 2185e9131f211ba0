package service

import (
	"context"
	"testing"
	"time"

	"aoqbot/internal/models"
	"aoqbot/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStateService() *StateService {
	logger := zerolog.Nop()
	return NewStateService(repository.NewMemoryStateRepository(time.Hour), &logger)
}

func TestStateService(t *testing.T) {
	svc := newStateService()
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		err := svc.SetUserState(ctx, 1, models.StateAwaitingQualityScore, map[string]interface{}{"specialist_id": "sp1"})
		require.NoError(t, err)

		state, err := svc.GetUserState(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.Equal(t, models.StateAwaitingQualityScore, state.CurrentStep)
		assert.Equal(t, "sp1", state.GetString("specialist_id"))
	})

	t.Run("UpdateData", func(t *testing.T) {
		err := svc.UpdateUserStateData(ctx, 1, "service_id", "svc1")
		require.NoError(t, err)

		state, _ := svc.GetUserState(ctx, 1)
		assert.Equal(t, "svc1", state.GetString("service_id"))
		// Прежние данные сохранены
		assert.Equal(t, "sp1", state.GetString("specialist_id"))
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, svc.ClearUserState(ctx, 1))
		state, err := svc.GetUserState(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, state)
	})
}

func TestSetUserStateIf(t *testing.T) {
	svc := newStateService()
	ctx := context.Background()

	// Пустое состояние входит в ожидаемые
	applied, err := svc.SetUserStateIf(ctx, 2, []string{models.StateAwaitingImprovementComment, ""},
		models.StateAwaitingSatisfactionScore, map[string]interface{}{"aoq_id": "a1"})
	require.NoError(t, err)
	assert.True(t, applied)

	// Пользователь уже на другом шаге — переход отклонен
	require.NoError(t, svc.SetUserState(ctx, 3, models.StateAwaitingBroadcastText, nil))
	applied, err = svc.SetUserStateIf(ctx, 3, []string{models.StateAwaitingImprovementComment, ""},
		models.StateAwaitingSatisfactionScore, nil)
	require.NoError(t, err)
	assert.False(t, applied)

	state, _ := svc.GetUserState(ctx, 3)
	assert.Equal(t, models.StateAwaitingBroadcastText, state.CurrentStep)
}
