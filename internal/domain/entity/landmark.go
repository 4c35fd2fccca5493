package entity

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// LandmarkID номер анатомической точки в нумерации MediaPipe Pose.
type LandmarkID int

const (
	Nose LandmarkID = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	MouthLeft
	MouthRight
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex

	NumLandmarks = 33
)

var landmarkNames = [NumLandmarks]string{
	"nose",
	"left_eye_inner", "left_eye", "left_eye_outer",
	"right_eye_inner", "right_eye", "right_eye_outer",
	"left_ear", "right_ear",
	"mouth_left", "mouth_right",
	"left_shoulder", "right_shoulder",
	"left_elbow", "right_elbow",
	"left_wrist", "right_wrist",
	"left_pinky", "right_pinky",
	"left_index", "right_index",
	"left_thumb", "right_thumb",
	"left_hip", "right_hip",
	"left_knee", "right_knee",
	"left_ankle", "right_ankle",
	"left_heel", "right_heel",
	"left_foot_index", "right_foot_index",
}

// Valid сообщает, входит ли номер в диапазон 0..32.
func (id LandmarkID) Valid() bool {
	return id >= 0 && id < NumLandmarks
}

func (id LandmarkID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("landmark(%d)", int(id))
	}
	return landmarkNames[id]
}

// LandmarkByName ищет номер точки по имени MediaPipe ("left_wrist" и т.п.).
func LandmarkByName(name string) (LandmarkID, bool) {
	for i, n := range landmarkNames {
		if n == name {
			return LandmarkID(i), true
		}
	}
	return 0, false
}

// Landmark точка позы в пикселях текущего кадра
type Landmark struct {
	ID LandmarkID
	X  int
	Y  int
}

// Vec переводит точку в вектор gonum для геометрии.
func (l Landmark) Vec() r2.Vec {
	return r2.Vec{X: float64(l.X), Y: float64(l.Y)}
}

// LandmarkSet неизменяемый набор точек одного кадра, индексированный по номеру.
type LandmarkSet struct {
	points  [NumLandmarks]Landmark
	present [NumLandmarks]bool
	count   int
}

// NewLandmarkSet собирает набор из списка; точки с номером вне диапазона отбрасываются,
// при повторе номера побеждает последняя.
func NewLandmarkSet(landmarks []Landmark) LandmarkSet {
	var s LandmarkSet
	for _, lm := range landmarks {
		if !lm.ID.Valid() {
			continue
		}
		if !s.present[lm.ID] {
			s.count++
		}
		s.points[lm.ID] = lm
		s.present[lm.ID] = true
	}
	return s
}

// Get возвращает точку и признак её наличия.
func (s LandmarkSet) Get(id LandmarkID) (Landmark, bool) {
	if !id.Valid() || !s.present[id] {
		return Landmark{}, false
	}
	return s.points[id], true
}

// Lookup возвращает точку или MissingLandmarkError.
func (s LandmarkSet) Lookup(id LandmarkID) (Landmark, error) {
	lm, ok := s.Get(id)
	if !ok {
		return Landmark{}, &MissingLandmarkError{ID: id}
	}
	return lm, nil
}

// Len количество присутствующих точек.
func (s LandmarkSet) Len() int {
	return s.count
}

// Empty true, если человек в кадре не найден.
func (s LandmarkSet) Empty() bool {
	return s.count == 0
}

// All возвращает присутствующие точки по возрастанию номера.
func (s LandmarkSet) All() []Landmark {
	out := make([]Landmark, 0, s.count)
	for i := range s.points {
		if s.present[i] {
			out = append(out, s.points[i])
		}
	}
	return out
}
