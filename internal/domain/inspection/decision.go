package inspection

import "ppe-gate/internal/domain/entity"

// Decide выносит решение о допуске.
//
// Порядок: любой предмет не на месте → Misplaced; все обязательные классы
// совпали → Granted; иначе Denied. Пустой набор обязательных классов
// отсекается конфигурацией; если он всё же пришёл, правило то же (0 из 0 → Granted).
func Decide(result entity.PassResult, required entity.RequiredSet) entity.AccessDecision {
	if result.Misplaced > 0 {
		return entity.DecisionMisplaced
	}

	want := required.Count()
	matched := 0
	for _, c := range required.Classes() {
		if result.Status(c) == entity.StatusMatched {
			matched++
		}
	}
	if matched == want {
		return entity.DecisionGranted
	}
	return entity.DecisionDenied
}

// Verdict итог одного прохода проверки.
type Verdict struct {
	Detections []entity.MatchedDetection
	Result     entity.PassResult
	Decision   entity.AccessDecision
}

// Verify выполняет проход целиком: сверка зон, сведение по классам, решение.
// При нехватке точек позы решение не выносится и возвращается ошибка.
func Verify(m *ZoneMatcher, detections []entity.Detection, set entity.LandmarkSet, required entity.RequiredSet) (Verdict, error) {
	matched, err := m.MatchAll(detections, set)
	if err != nil {
		return Verdict{}, err
	}
	result := Aggregate(matched)
	return Verdict{
		Detections: matched,
		Result:     result,
		Decision:   Decide(result, required),
	}, nil
}
