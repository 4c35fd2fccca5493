package container

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"ppe-gate/internal/domain/entity"
	"ppe-gate/internal/domain/inspection"
	"ppe-gate/internal/infrastructure/replay"
	"ppe-gate/internal/infrastructure/storage"
	"ppe-gate/internal/timeutil"
)

func TestNew_RejectsBadConfig(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	repo := storage.NewMemoryOperatorRepository()

	_, err := New(repo, replay.NewDetector(nil), entity.RequiredSet{}, inspection.DefaultGateConfig(), clock, zerolog.Nop())
	require.ErrorIs(t, err, entity.ErrEmptyRequiredSet)

	bad := inspection.DefaultGateConfig()
	bad.IdleReset = 0
	_, err = New(repo, replay.NewDetector(nil), entity.AllRequired(), bad, clock, zerolog.Nop())
	require.Error(t, err)
}

func TestNew_BoardFollowsGate(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	c, err := New(storage.NewMemoryOperatorRepository(), replay.NewDetector(nil), entity.AllRequired(), inspection.DefaultGateConfig(), clock, zerolog.Nop())
	require.NoError(t, err)

	pose := entity.NewLandmarkSet([]entity.Landmark{
		{ID: entity.LeftShoulder, X: 300, Y: 200},
		{ID: entity.LeftElbow, X: 300, Y: 300},
		{ID: entity.LeftWrist, X: 400, Y: 300},
		{ID: entity.RightShoulder, X: 100, Y: 200},
		{ID: entity.RightElbow, X: 100, Y: 300},
		{ID: entity.RightWrist, X: 20, Y: 220},
	})
	out, err := c.InspectionService.ProcessFrame(context.Background(), entity.Frame{Seq: 1, Landmarks: pose})
	require.NoError(t, err)
	require.Nil(t, out)
	require.Equal(t, 1, c.Board.Snapshot().HoldLevel)
}
