package propagate

import (
	"fmt"

	"github.com/shenwei356/xopen"
)

// WriteCountFile emits the per-node count record of §4.3 step 5:
// "(v.name, |I(v)|)" as a single tab-separated line.
func WriteCountFile(path, name string, count int) error {
	w, err := xopen.Wopen(path)
	if err != nil {
		return err
	}
	defer w.Close()
	_, err = fmt.Fprintf(w, "%s\t%d\n", name, count)
	return err
}
