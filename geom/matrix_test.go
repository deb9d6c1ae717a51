// SPDX-License-Identifier: Unlicense OR MIT

package geom

import "testing"

func TestMatrixInverseIdentity(t *testing.T) {
	m := Translate4(10, -20, 0)
	m.Mul(Scale4(2, 3, 1))

	inv, ok := m.Invert()
	if !ok {
		t.Fatal("expected invertible matrix")
	}
	got := m
	got.Mul(inv)
	want := Identity4()
	for i := range want {
		if diff := got[i] - want[i]; diff > 1e-5 || diff < -1e-5 {
			t.Fatalf("forward ∘ inverse != I at %d: got %v, want %v", i, got, want)
		}
	}
}

func TestMatrixTransformPoint(t *testing.T) {
	m := Translate4(5, 5, 0)
	v := m.Transform(Vec4{X: 1, Y: 2, Z: 0, W: 1})
	if v.X != 6 || v.Y != 7 {
		t.Fatalf("got %v, want (6,7)", v)
	}
}

func TestMatrixSingularNotInvertible(t *testing.T) {
	m := Scale4(0, 1, 1)
	if _, ok := m.Invert(); ok {
		t.Fatal("expected non-invertible matrix")
	}
}
