package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"ppe-gate/internal/domain/entity"
	"ppe-gate/internal/infrastructure/storage"
)

func TestOperatorService_BeginToggleAndCancel(t *testing.T) {
	svc := NewOperatorService(storage.NewMemoryOperatorRepository())
	ctx := context.Background()

	op, err := svc.BeginToggle(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingClass, op.State)

	op, err = svc.Cancel(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, op.State)
}

func TestOperatorService_Subscribers(t *testing.T) {
	svc := NewOperatorService(storage.NewMemoryOperatorRepository())
	ctx := context.Background()

	_, err := svc.Subscribe(ctx, 1, 10, true)
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, 2, 20, true)
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, 2, 20, false)
	require.NoError(t, err)
	_, err = svc.Get(ctx, 3, 30)
	require.NoError(t, err)

	subs, err := svc.Subscribers(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Equal(t, int64(10), subs[0].ChatID)
}
