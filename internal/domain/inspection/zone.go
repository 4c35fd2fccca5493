package inspection

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"ppe-gate/internal/domain/entity"
)

// PointGroup набор точек, которые должны одновременно попасть в зону, и исход при успехе.
type PointGroup struct {
	Outcome entity.MatchOutcome
	Points  []entity.LandmarkID
}

// ZoneRule правило сверки для класса: группы проверяются по порядку, первая совпавшая побеждает.
type ZoneRule struct {
	Groups []PointGroup
	// Zone строит зону из рамки детекции; nil означает саму рамку.
	Zone func(entity.BoundingBox) r2.Box
}

func (r ZoneRule) zone(b entity.BoundingBox) r2.Box {
	if r.Zone == nil {
		return b.Rect()
	}
	return r.Zone(b)
}

// HelmetZone продлевает рамку каски вниз до y = 2·(y+h), чтобы в неё попадал нос.
func HelmetZone(b entity.BoundingBox) r2.Box {
	z := b.Rect()
	z.Max.Y = 2 * float64(b.Y+b.Height)
	return z
}

// DefaultZoneRules таблица зон тела для семи классов СИЗ.
func DefaultZoneRules() map[entity.PPEClass]ZoneRule {
	return map[entity.PPEClass]ZoneRule{
		entity.Mask: {Groups: []PointGroup{
			{Outcome: entity.Match, Points: []entity.LandmarkID{entity.Nose, entity.MouthLeft, entity.MouthRight}},
		}},
		entity.Helmet: {
			Groups: []PointGroup{{Outcome: entity.Match, Points: []entity.LandmarkID{entity.Nose}}},
			Zone:   HelmetZone,
		},
		entity.Glasses: {Groups: []PointGroup{
			{Outcome: entity.Match, Points: []entity.LandmarkID{entity.LeftEye, entity.RightEye}},
		}},
		entity.EarProtection: {Groups: []PointGroup{
			{Outcome: entity.Match, Points: []entity.LandmarkID{entity.LeftEar, entity.RightEar}},
		}},
		entity.Vest: {Groups: []PointGroup{
			{Outcome: entity.Match, Points: []entity.LandmarkID{
				entity.RightShoulder, entity.LeftShoulder, entity.RightHip, entity.LeftHip,
			}},
		}},
		entity.Glove: {Groups: []PointGroup{
			{Outcome: entity.MatchRight, Points: []entity.LandmarkID{entity.RightWrist, entity.RightIndex}},
			{Outcome: entity.MatchLeft, Points: []entity.LandmarkID{entity.LeftWrist, entity.LeftIndex}},
		}},
		entity.Boot: {Groups: []PointGroup{
			{Outcome: entity.MatchRight, Points: []entity.LandmarkID{entity.RightAnkle, entity.RightFootIndex}},
			{Outcome: entity.MatchLeft, Points: []entity.LandmarkID{entity.LeftAnkle, entity.LeftFootIndex}},
		}},
	}
}

// ZoneMatcher сверяет рамки детекций с зонами тела по таблице правил.
type ZoneMatcher struct {
	rules map[entity.PPEClass]ZoneRule
}

// NewZoneMatcher создаёт сверщик с правилами по умолчанию.
func NewZoneMatcher() *ZoneMatcher {
	return NewZoneMatcherWithRules(DefaultZoneRules())
}

// NewZoneMatcherWithRules создаёт сверщик с собственной таблицей.
func NewZoneMatcherWithRules(rules map[entity.PPEClass]ZoneRule) *ZoneMatcher {
	return &ZoneMatcher{rules: rules}
}

// Match возвращает исход сверки одной детекции.
// Все точки, упомянутые в правиле класса, должны быть в наборе, иначе MissingLandmarkError.
func (m *ZoneMatcher) Match(d entity.Detection, set entity.LandmarkSet) (entity.MatchOutcome, error) {
	rule, ok := m.rules[d.Class]
	if !ok {
		return entity.NoMatch, fmt.Errorf("%w: %d", entity.ErrUnknownClass, int(d.Class))
	}

	points := make([][]r2.Vec, len(rule.Groups))
	for i, g := range rule.Groups {
		points[i] = make([]r2.Vec, len(g.Points))
		for j, id := range g.Points {
			lm, err := set.Lookup(id)
			if err != nil {
				return entity.NoMatch, err
			}
			points[i][j] = lm.Vec()
		}
	}

	zone := rule.zone(d.Box)
	for i, g := range rule.Groups {
		if allInside(zone, points[i]) {
			return g.Outcome, nil
		}
	}
	return entity.NoMatch, nil
}

// MatchAll сверяет все детекции прохода, сохраняя порядок.
func (m *ZoneMatcher) MatchAll(detections []entity.Detection, set entity.LandmarkSet) ([]entity.MatchedDetection, error) {
	out := make([]entity.MatchedDetection, 0, len(detections))
	for _, d := range detections {
		outcome, err := m.Match(d, set)
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", d.Class, err)
		}
		out = append(out, entity.MatchedDetection{Detection: d, Outcome: outcome})
	}
	return out, nil
}

func allInside(zone r2.Box, points []r2.Vec) bool {
	for _, p := range points {
		if !zone.Contains(p) {
			return false
		}
	}
	return true
}
