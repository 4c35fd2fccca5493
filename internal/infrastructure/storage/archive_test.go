package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ppe-gate/internal/domain/entity"
)

type stubAnnotator struct {
	err error
}

func (a stubAnnotator) Annotate(image []byte, _ []entity.MatchedDetection) ([]byte, error) {
	if a.err != nil {
		return nil, a.err
	}
	return append([]byte("annotated:"), image...), nil
}

func archiveOutcome(detections ...entity.MatchedDetection) entity.PassOutcome {
	return entity.PassOutcome{
		ID:         "0123456789abcdef",
		At:         time.Date(2024, 2, 3, 4, 5, 6, 789_000_000, time.UTC),
		Decision:   entity.DecisionGranted,
		Detections: detections,
	}
}

func TestYOLOLabels(t *testing.T) {
	detections := []entity.MatchedDetection{
		{Detection: entity.Detection{Class: entity.Vest, Box: entity.BoundingBox{X: 100, Y: 50, Width: 200, Height: 100}}},
		{Detection: entity.Detection{Class: entity.Mask, Box: entity.BoundingBox{X: 0, Y: 0, Width: 40, Height: 20}}},
	}
	got := YOLOLabels(detections, 400, 200)
	require.Equal(t, "4 0.500000 0.500000 0.500000 0.500000\n0 0.050000 0.050000 0.100000 0.100000\n", got)
}

func TestFileArchive_Positive(t *testing.T) {
	root := t.TempDir()
	archive, err := NewFileArchive(root, stubAnnotator{})
	require.NoError(t, err)

	det := entity.MatchedDetection{
		Detection: entity.Detection{Class: entity.Helmet, Box: entity.BoundingBox{X: 0, Y: 0, Width: 320, Height: 240}},
		Outcome:   entity.Match,
	}
	frame := entity.Frame{Width: 640, Height: 480, Image: []byte("jpeg")}
	require.NoError(t, archive.Record(context.Background(), archiveOutcome(det), frame))

	base := filepath.Join(root, "positive", "20240203_040506.789_01234567")
	img, err := os.ReadFile(base + ".jpg")
	require.NoError(t, err)
	require.Equal(t, "jpeg", string(img))

	annotated, err := os.ReadFile(base + "_annotated.jpg")
	require.NoError(t, err)
	require.Equal(t, "annotated:jpeg", string(annotated))

	labels, err := os.ReadFile(base + ".txt")
	require.NoError(t, err)
	require.Equal(t, "1 0.250000 0.250000 0.500000 0.500000\n", string(labels))
}

func TestFileArchive_NegativeWithoutImage(t *testing.T) {
	root := t.TempDir()
	archive, err := NewFileArchive(root, nil)
	require.NoError(t, err)

	require.NoError(t, archive.Record(context.Background(), archiveOutcome(), entity.Frame{}))

	entries, err := os.ReadDir(filepath.Join(root, "negative"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "20240203_040506.789_01234567.txt", entries[0].Name())

	entries, err = os.ReadDir(filepath.Join(root, "positive"))
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestFileArchive_AnnotatorError(t *testing.T) {
	archive, err := NewFileArchive(t.TempDir(), stubAnnotator{err: errors.New("bad image")})
	require.NoError(t, err)

	det := entity.MatchedDetection{Detection: entity.Detection{Class: entity.Boot}}
	err = archive.Record(context.Background(), archiveOutcome(det), entity.Frame{Image: []byte("x")})
	require.ErrorContains(t, err, "bad image")
}
