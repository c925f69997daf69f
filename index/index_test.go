package index

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStageFreshness(t *testing.T) {
	dir := t.TempDir()

	fresh, err := stageFresh(dir, 1)
	if err != nil {
		t.Fatal(err)
	}
	if fresh {
		t.Fatal("stage 1 should not be fresh before its marker exists")
	}

	if err := markComplete(dir, 1); err != nil {
		t.Fatal(err)
	}
	fresh, err = stageFresh(dir, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !fresh {
		t.Fatal("stage 1 should be fresh once its marker exists")
	}

	// stage 2 marker older than stage 1's marker (simulating stage 1
	// re-running after stage 2 had already completed once) must not be
	// reported fresh.
	if err := markComplete(dir, 2); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(markerPath(dir, 2), old, old); err != nil {
		t.Fatal(err)
	}
	fresh, err = stageFresh(dir, 2)
	if err != nil {
		t.Fatal(err)
	}
	if fresh {
		t.Fatal("stage 2 marker older than stage 1's must not be fresh")
	}
}

func TestClearFrom(t *testing.T) {
	dir := t.TempDir()
	for n := 1; n <= 5; n++ {
		if err := markComplete(dir, n); err != nil {
			t.Fatal(err)
		}
	}
	if err := clearFrom(dir, 3, 5); err != nil {
		t.Fatal(err)
	}
	for n := 1; n <= 2; n++ {
		if _, err := os.Stat(markerPath(dir, n)); err != nil {
			t.Errorf("marker %d should survive clearFrom(3,5): %v", n, err)
		}
	}
	for n := 3; n <= 5; n++ {
		if _, err := os.Stat(markerPath(dir, n)); !os.IsNotExist(err) {
			t.Errorf("marker %d should have been removed", n)
		}
	}
}

func TestInfoRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileInfo)
	want := &Info{MainVersion: 1, K: 21, Deletative: true, Workers: 4}
	if err := WriteInfo(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := ReadInfo(path)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *want {
		t.Errorf("ReadInfo = %+v, want %+v", *got, *want)
	}
}
