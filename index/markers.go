package index

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shenwei356/util/pathutil"
)

// markerPath returns the path of stage n's completion marker, per §6.1's
// ".complete.<n>" convention.
func markerPath(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf(".complete.%d", n))
}

// stageFresh reports whether stage n's marker exists and is newer than
// stage n-1's marker (the §4.4 freshness rule). Stage 1 is fresh whenever
// its own marker exists, since it has no predecessor.
func stageFresh(dir string, n int) (bool, error) {
	cur := markerPath(dir, n)
	ok, err := pathutil.Exists(cur)
	if err != nil || !ok {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	prevInfo, err := os.Stat(markerPath(dir, n-1))
	if err != nil {
		return false, nil
	}
	curInfo, err := os.Stat(cur)
	if err != nil {
		return false, err
	}
	return !curInfo.ModTime().Before(prevInfo.ModTime()), nil
}

// markComplete writes and fsyncs stage n's marker. Per §5's "shared
// resources" rule, markers are only written after the corresponding
// artifact is fully written, so each stage function (stage1, stage2, ...)
// calls markComplete only after that stage's artifacts are in place.
func markComplete(dir string, n int) error {
	f, err := os.Create(markerPath(dir, n))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(f, time.Now().UTC().Format(time.RFC3339)); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// clearFrom removes markers for stage n and every stage after it, per
// §4.4's "stage i's failure MUST NOT leave a stale marker for i or beyond".
func clearFrom(dir string, n, lastStage int) error {
	for s := n; s <= lastStage; s++ {
		p := markerPath(dir, s)
		ok, err := pathutil.Exists(p)
		if err != nil {
			return err
		}
		if ok {
			if err := os.Remove(p); err != nil {
				return err
			}
		}
	}
	return nil
}
