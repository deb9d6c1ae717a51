// SPDX-License-Identifier: Unlicense OR MIT

package output

import (
	"testing"

	"wlcore.dev/geom"
)

func TestProjectionOrientation(t *testing.T) {
	o := New(0, 0, 1024, 768, false, nil)
	center := o.Matrix.Transform(geom.Vec4{X: 512, Y: 384, Z: 0, W: 1})
	if center.X > 1e-4 || center.X < -1e-4 || center.Y > 1e-4 || center.Y < -1e-4 {
		t.Fatalf("center should map near origin, got %v", center)
	}
	top := o.Matrix.Transform(geom.Vec4{X: 512, Y: 0, Z: 0, W: 1})
	if top.Y >= 0 {
		t.Fatalf("unflipped output should map top edge to negative Y, got %v", top.Y)
	}

	flipped := New(0, 0, 1024, 768, true, nil)
	topFlipped := flipped.Matrix.Transform(geom.Vec4{X: 512, Y: 0, Z: 0, W: 1})
	if topFlipped.Y <= 0 {
		t.Fatalf("flipped output should map top edge to positive Y, got %v", topFlipped.Y)
	}
}

type noopDamager struct{ got []geom.Rect }

func (d *noopDamager) Damage(r geom.Rect) { d.got = append(d.got, r) }

func TestAssignForDefaultsAndLogs(t *testing.T) {
	d := &noopDamager{}
	set := NewSet(d)
	o1 := New(0, 0, 100, 100, false, nil)
	o2 := New(200, 0, 100, 100, false, nil)
	set.Add(o1)
	set.Add(o2)

	if got := set.AssignFor(250, 10); got != o2 {
		t.Fatalf("expected o2 for in-bounds point, got %v", got)
	}
	if got := set.AssignFor(1000, 1000); got != o1 {
		t.Fatalf("expected default output 0 for out-of-bounds point, got %v", got)
	}
}

func TestClampToOutputs(t *testing.T) {
	d := &noopDamager{}
	set := NewSet(d)
	set.Add(New(0, 0, 100, 100, false, nil))
	set.Add(New(200, 0, 100, 100, false, nil))

	x, y := set.ClampToOutputs(150, 50)
	if x != 150 {
		t.Fatalf("x inside gap between outputs should not clamp in this union-rect model, got %v", x)
	}
	x, y = set.ClampToOutputs(-10, -10)
	if x != 0 || y != 0 {
		t.Fatalf("expected clamp to (0,0), got (%v,%v)", x, y)
	}
	x, y = set.ClampToOutputs(1000, 1000)
	if x != 300 || y != 100 {
		t.Fatalf("expected clamp to (300,100), got (%v,%v)", x, y)
	}
}

func TestMoveDamagesOldAndNewRect(t *testing.T) {
	d := &noopDamager{}
	set := NewSet(d)
	o := New(0, 0, 100, 100, false, nil)
	set.Add(o)
	set.Move(o, 50, 50)
	if len(d.got) != 2 {
		t.Fatalf("expected 2 damage calls, got %d", len(d.got))
	}
	if d.got[0] != geom.Rectangle(0, 0, 100, 100) {
		t.Fatalf("expected old rect damaged first, got %v", d.got[0])
	}
	if d.got[1] != geom.Rectangle(50, 50, 100, 100) {
		t.Fatalf("expected new rect damaged second, got %v", d.got[1])
	}
}
