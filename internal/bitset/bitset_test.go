package bitset

import "testing"

func TestSetAndTest(t *testing.T) {
	var b Set
	b.SetBit(3)
	b.SetBit(130)
	if !b.Test(3) || !b.Test(130) {
		t.Fatal("expected bits 3 and 130 set")
	}
	if b.Test(4) {
		t.Fatal("bit 4 should be clear")
	}
	if b.Count() != 2 {
		t.Errorf("count = %d, want 2", b.Count())
	}
}

func TestSetRange(t *testing.T) {
	var b Set
	b.SetRange(2, 5)
	for i := uint(0); i < 8; i++ {
		want := i >= 2 && i < 5
		if b.Test(i) != want {
			t.Errorf("bit %d = %v, want %v", i, b.Test(i), want)
		}
	}
	if b.Count() != 3 {
		t.Errorf("count = %d, want 3", b.Count())
	}
}

func TestInPlaceUnion(t *testing.T) {
	var a, c Set
	a.SetBit(1)
	c.SetBit(1)
	c.SetBit(200)
	a.InPlaceUnion(c)
	if !a.Test(1) || !a.Test(200) {
		t.Fatal("union missing bits")
	}
}

func TestRuns(t *testing.T) {
	var b Set
	b.SetRange(2, 5) // 0 0 1 1 1 0 0 0
	var runs [][2]int
	b.Runs(8, func(length int, set bool) {
		v := 0
		if set {
			v = 1
		}
		runs = append(runs, [2]int{length, v})
	})
	want := [][2]int{{2, 0}, {3, 1}, {3, 0}}
	if len(runs) != len(want) {
		t.Fatalf("runs = %v, want %v", runs, want)
	}
	for i := range want {
		if runs[i] != want[i] {
			t.Errorf("run[%d] = %v, want %v", i, runs[i], want[i])
		}
	}
}
