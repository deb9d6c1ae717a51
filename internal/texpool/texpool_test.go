// SPDX-License-Identifier: Unlicense OR MIT

package texpool

import "testing"

func TestAcquireReleaseRecyclesName(t *testing.T) {
	p := New()
	a, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := p.Release(a); err != nil {
		t.Fatalf("Release: %v", err)
	}
	b, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if b != a {
		t.Fatalf("expected the freed name %d to be recycled, got %d", a, b)
	}
}

func TestAcquireGrowsPastRecycledNames(t *testing.T) {
	p := New()
	a, _ := p.Acquire()
	b, _ := p.Acquire()
	if a == b {
		t.Fatalf("expected two live Acquires to return distinct names, both got %d", a)
	}
}

func TestReleaseUnknownNameIsNoop(t *testing.T) {
	p := New()
	if err := p.Release(999); err != nil {
		t.Fatalf("expected releasing an unacquired name to be a no-op, got %v", err)
	}
}
