package inspection

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"ppe-gate/internal/domain/entity"
)

// фигура анфас: левые точки человека справа на кадре
func bodyPoints() []entity.Landmark {
	return []entity.Landmark{
		{ID: entity.Nose, X: 200, Y: 100},
		{ID: entity.LeftEye, X: 210, Y: 90},
		{ID: entity.RightEye, X: 190, Y: 90},
		{ID: entity.LeftEar, X: 225, Y: 95},
		{ID: entity.RightEar, X: 175, Y: 95},
		{ID: entity.MouthLeft, X: 210, Y: 115},
		{ID: entity.MouthRight, X: 190, Y: 115},
		{ID: entity.LeftShoulder, X: 250, Y: 160},
		{ID: entity.RightShoulder, X: 150, Y: 160},
		{ID: entity.LeftHip, X: 240, Y: 300},
		{ID: entity.RightHip, X: 160, Y: 300},
		{ID: entity.LeftWrist, X: 300, Y: 300},
		{ID: entity.RightWrist, X: 100, Y: 300},
		{ID: entity.LeftIndex, X: 305, Y: 320},
		{ID: entity.RightIndex, X: 95, Y: 320},
		{ID: entity.LeftAnkle, X: 230, Y: 500},
		{ID: entity.RightAnkle, X: 170, Y: 500},
		{ID: entity.LeftFootIndex, X: 240, Y: 520},
		{ID: entity.RightFootIndex, X: 160, Y: 520},
	}
}

func body() entity.LandmarkSet {
	return entity.NewLandmarkSet(bodyPoints())
}

func bodyWith(id entity.LandmarkID, x, y int) entity.LandmarkSet {
	points := bodyPoints()
	for i := range points {
		if points[i].ID == id {
			points[i].X, points[i].Y = x, y
		}
	}
	return entity.NewLandmarkSet(points)
}

func bodyWithout(id entity.LandmarkID) entity.LandmarkSet {
	var points []entity.Landmark
	for _, p := range bodyPoints() {
		if p.ID != id {
			points = append(points, p)
		}
	}
	return entity.NewLandmarkSet(points)
}

func det(c entity.PPEClass, x, y, w, h int) entity.Detection {
	return entity.Detection{Class: c, Box: entity.BoundingBox{X: x, Y: y, Width: w, Height: h}, Confidence: 0.95}
}

var (
	maskBox      = det(entity.Mask, 190, 100, 20, 15)
	helmetBox    = det(entity.Helmet, 170, 20, 60, 40)
	glassesBox   = det(entity.Glasses, 190, 85, 20, 10)
	earBox       = det(entity.EarProtection, 175, 90, 50, 10)
	vestBox      = det(entity.Vest, 150, 160, 100, 140)
	rightGlove   = det(entity.Glove, 90, 290, 20, 40)
	leftGlove    = det(entity.Glove, 295, 295, 15, 30)
	rightBoot    = det(entity.Boot, 155, 490, 20, 35)
	leftBoot     = det(entity.Boot, 225, 490, 20, 35)
	strayGlove   = det(entity.Glove, 0, 0, 10, 10)
	strayHelmet  = det(entity.Helmet, 400, 400, 20, 20)
	bothHandsBox = det(entity.Glove, 90, 290, 220, 40)
)

func TestZoneMatcher_Match(t *testing.T) {
	m := NewZoneMatcher()

	cases := []struct {
		name string
		d    entity.Detection
		want entity.MatchOutcome
	}{
		{"mask on face edges", maskBox, entity.Match},
		{"helmet above head", helmetBox, entity.Match},
		{"glasses", glassesBox, entity.Match},
		{"ear protection", earBox, entity.Match},
		{"vest", vestBox, entity.Match},
		{"right glove", rightGlove, entity.MatchRight},
		{"left glove", leftGlove, entity.MatchLeft},
		{"glove over both hands prefers right", bothHandsBox, entity.MatchRight},
		{"right boot", rightBoot, entity.MatchRight},
		{"left boot", leftBoot, entity.MatchLeft},
		{"glove away from hands", strayGlove, entity.NoMatch},
		{"helmet away from head", strayHelmet, entity.NoMatch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.Match(tc.d, body())
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestZoneMatcher_PointOutsideBox(t *testing.T) {
	m := NewZoneMatcher()

	got, err := m.Match(maskBox, bodyWith(entity.MouthRight, 189, 115))
	require.NoError(t, err)
	require.Equal(t, entity.NoMatch, got)

	got, err = m.Match(vestBox, bodyWith(entity.LeftHip, 240, 301))
	require.NoError(t, err)
	require.Equal(t, entity.NoMatch, got)
}

func TestZoneMatcher_HelmetZoneExtendsDown(t *testing.T) {
	m := NewZoneMatcher()

	// сама рамка каски носа не содержит
	require.False(t, helmetBox.Box.Contains(r2.Vec{X: 200, Y: 100}))

	got, err := m.Match(helmetBox, bodyWith(entity.Nose, 200, 120))
	require.NoError(t, err)
	require.Equal(t, entity.Match, got)

	got, err = m.Match(helmetBox, bodyWith(entity.Nose, 200, 121))
	require.NoError(t, err)
	require.Equal(t, entity.NoMatch, got)

	// выше верхнего края зона не расширяется
	got, err = m.Match(helmetBox, bodyWith(entity.Nose, 200, 19))
	require.NoError(t, err)
	require.Equal(t, entity.NoMatch, got)
}

func TestZoneMatcher_MissingLandmark(t *testing.T) {
	m := NewZoneMatcher()

	// левая перчатка совпала бы, но правила требуют все точки обеих сторон
	_, err := m.Match(leftGlove, bodyWithout(entity.RightIndex))
	require.ErrorIs(t, err, entity.ErrMissingLandmark)

	var missing *entity.MissingLandmarkError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, entity.RightIndex, missing.ID)

	_, err = m.MatchAll([]entity.Detection{maskBox, vestBox}, bodyWithout(entity.LeftHip))
	require.ErrorIs(t, err, entity.ErrMissingLandmark)
}

func TestZoneMatcher_UnknownClass(t *testing.T) {
	m := NewZoneMatcher()
	_, err := m.Match(entity.Detection{Class: entity.PPEClass(42)}, body())
	require.ErrorIs(t, err, entity.ErrUnknownClass)
}

func TestZoneMatcher_MatchAllKeepsOrder(t *testing.T) {
	m := NewZoneMatcher()
	got, err := m.MatchAll([]entity.Detection{strayGlove, maskBox, leftBoot}, body())
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, entity.NoMatch, got[0].Outcome)
	require.Equal(t, entity.Match, got[1].Outcome)
	require.Equal(t, entity.MatchLeft, got[2].Outcome)
	require.Equal(t, leftBoot, got[2].Detection)
}
