package engine

// Matrix2D is an affine transform stored as [a, b, c, d, e, f]:
//
//	| a  c  e |
//	| b  d  f |
//	| 0  0  1 |
//
// The viewport's domain-to-device mapping is a scale with a flipped y
// followed by a translation to the origin pixel.
type Matrix2D [6]float64

func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// Multiply returns m * o, which applies o first.
func (m Matrix2D) Multiply(o Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*o[0] + m[2]*o[1],
		m[1]*o[0] + m[3]*o[1],
		m[0]*o[2] + m[2]*o[3],
		m[1]*o[2] + m[3]*o[3],
		m[0]*o[4] + m[2]*o[5] + m[4],
		m[1]*o[4] + m[3]*o[5] + m[5],
	}
}

// TransformPoint applies m to (x, y). Infinite input turns into NaN
// through the zero terms, so curve samples are mapped with ToDevice.
func (m Matrix2D) TransformPoint(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Invert returns the inverse of m. ok is false for a singular matrix,
// such as the one produced by a zero scale.
func (m Matrix2D) Invert() (inv Matrix2D, ok bool) {
	det := m[0]*m[3] - m[1]*m[2]
	if det == 0 || !isFinite(det) {
		return Identity(), false
	}
	k := 1 / det
	return Matrix2D{
		m[3] * k,
		-m[1] * k,
		-m[2] * k,
		m[0] * k,
		(m[2]*m[5] - m[3]*m[4]) * k,
		(m[1]*m[4] - m[0]*m[5]) * k,
	}, true
}
