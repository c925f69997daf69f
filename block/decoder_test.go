package block

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDecoderStreamsInOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blocks.tsv")
	content := "U\tr1\t*\t7\tX:1 A:1 0:3\n" +
		"U\tr2\t*\t2\t\n" +
		"U\tr3\t*\t5\tA,B:2 0:1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	dec, err := NewDecoder(path, 3, 2, 2)
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for {
		rec, ok, err := dec.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		names = append(names, rec.QName)
	}
	want := []string{"r1", "r2", "r3"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("record %d = %q, want %q", i, names[i], want[i])
		}
	}
}
