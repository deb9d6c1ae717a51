// SPDX-License-Identifier: Unlicense OR MIT

package geom

// Vec4 is a homogeneous 4-vector.
type Vec4 struct {
	X, Y, Z, W float32
}

// Mat4 is a row-major 4x4 matrix of float32, matching spec.md §4.1.
type Mat4 [16]float32

// Identity4 returns the identity matrix.
func Identity4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate4 returns a translation matrix.
func Translate4(x, y, z float32) Mat4 {
	m := Identity4()
	m[3], m[7], m[11] = x, y, z
	return m
}

// Scale4 returns a scaling matrix.
func Scale4(x, y, z float32) Mat4 {
	m := Identity4()
	m[0], m[5], m[10] = x, y, z
	return m
}

// Mul right-multiplies m by n in place: m ← m * n.
func (m *Mat4) Mul(n Mat4) {
	var out Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[row*4+k] * n[k*4+col]
			}
			out[row*4+col] = sum
		}
	}
	*m = out
}

// Transform applies m to the homogeneous vector v.
func (m Mat4) Transform(v Vec4) Vec4 {
	return Vec4{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3]*v.W,
		Y: m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7]*v.W,
		Z: m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11]*v.W,
		W: m[12]*v.X + m[13]*v.Y + m[14]*v.Z + m[15]*v.W,
	}
}

// Invert returns the inverse of m and whether m was invertible. Surface
// transforms built by update_matrix (scene.updateMatrix) are always a
// composition of translate/scale, which is always invertible when w,h > 0;
// general 4x4 inversion is provided here so the invariant in spec.md §8
// ("forward ∘ inverse = I to float precision ≤ 1e-5") can be checked
// directly against arbitrary transforms in tests.
func (m Mat4) Invert() (Mat4, bool) {
	a := m
	inv := Identity4()

	for col := 0; col < 4; col++ {
		pivot := col
		best := abs32(a[col*4+col])
		for r := col + 1; r < 4; r++ {
			if v := abs32(a[r*4+col]); v > best {
				best, pivot = v, r
			}
		}
		if best < 1e-12 {
			return Mat4{}, false
		}
		if pivot != col {
			swapRow(&a, col, pivot)
			swapRow(&inv, col, pivot)
		}
		pv := a[col*4+col]
		for k := 0; k < 4; k++ {
			a[col*4+k] /= pv
			inv[col*4+k] /= pv
		}
		for r := 0; r < 4; r++ {
			if r == col {
				continue
			}
			factor := a[r*4+col]
			if factor == 0 {
				continue
			}
			for k := 0; k < 4; k++ {
				a[r*4+k] -= factor * a[col*4+k]
				inv[r*4+k] -= factor * inv[col*4+k]
			}
		}
	}
	return inv, true
}

func swapRow(m *Mat4, i, j int) {
	for k := 0; k < 4; k++ {
		m[i*4+k], m[j*4+k] = m[j*4+k], m[i*4+k]
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
