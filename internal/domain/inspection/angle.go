package inspection

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"ppe-gate/internal/domain/entity"
)

// Angle возвращает угол p1-p2-p3 в градусах как разность atan2 лучей p2→p3 и p2→p1.
//
// Результат знаковый и не приводится к (-180, 180]: при переходе луча через ось -X
// значение может выйти за ±180. Пороги гейта подобраны под камеру, смотрящую
// на человека анфас, и опираются именно на эту ненормированную величину.
func Angle(p1, p2, p3 r2.Vec) float64 {
	a := r2.Sub(p3, p2)
	b := r2.Sub(p1, p2)
	return (math.Atan2(a.Y, a.X) - math.Atan2(b.Y, b.X)) * 180 / math.Pi
}

// LandmarkAngle считает Angle по трём точкам набора.
// Если какой-то точки нет, возвращает MissingLandmarkError.
func LandmarkAngle(set entity.LandmarkSet, id1, id2, id3 entity.LandmarkID) (float64, error) {
	p1, err := set.Lookup(id1)
	if err != nil {
		return 0, err
	}
	p2, err := set.Lookup(id2)
	if err != nil {
		return 0, err
	}
	p3, err := set.Lookup(id3)
	if err != nil {
		return 0, err
	}
	return Angle(p1.Vec(), p2.Vec(), p3.Vec()), nil
}
