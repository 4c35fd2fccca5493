package inspection

import "ppe-gate/internal/domain/entity"

// Aggregate сводит исходы одного прохода в статусы классов.
//
// Двусторонние классы (перчатки, ботинки) засчитываются, только когда за проход
// совпали и правая, и левая сторона. Каждая детекция без совпадения увеличивает
// Misplaced, даже если другая детекция того же класса совпала.
func Aggregate(matches []entity.MatchedDetection) entity.PassResult {
	result := entity.NewPassResult()
	var right, left [entity.NumClasses]bool

	for _, m := range matches {
		c := m.Class
		if !c.Valid() {
			continue
		}
		if m.Confidence > result.Confidence[c] {
			result.Confidence[c] = m.Confidence
		}

		switch m.Outcome {
		case entity.Match:
			result.Statuses[c] = entity.StatusMatched
		case entity.MatchRight, entity.MatchLeft:
			if !c.Bilateral() {
				result.Statuses[c] = entity.StatusMatched
				continue
			}
			if m.Outcome == entity.MatchRight {
				right[c] = true
			} else {
				left[c] = true
			}
			if right[c] && left[c] {
				result.Statuses[c] = entity.StatusMatched
			}
		default:
			result.Misplaced++
		}
	}

	return result
}
