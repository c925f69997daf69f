package index

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/pkg/errors"
)

// ErrExternalTool wraps a nonzero exit from one of the §6.3 external
// collaborators (BWT/SA builder, k-LCP builder).
var ErrExternalTool = errors.New("index: external tool failed")

// Tools names the external binaries invoked by stages 3-5 (§6.3). They are
// opaque subprocesses this module never reimplements (§1's explicit
// out-of-scope boundary for BWT/SA/k-LCP construction).
type Tools struct {
	Fa2Pac string // fasta -> .pac
	Pac2Bwt string // .pac -> .bwt
	BwtOcc  string // adds occurrence counts to .bwt
	Bwt2Sa  string // .bwt -> sampled .sa
	KLCP    string // .bwt -> .<k>.klcp
}

// DefaultTools resolves each external tool by bare name, relying on PATH,
// following the teacher's checkError-style "invoke and surface
// CombinedOutput on failure" convention for wrapping external processes.
func DefaultTools() Tools {
	return Tools{
		Fa2Pac:  "prophyle_index_fa2pac",
		Pac2Bwt: "prophyle_index_pac2bwt",
		BwtOcc:  "prophyle_index_bwt2occ",
		Bwt2Sa:  "prophyle_index_bwt2sa",
		KLCP:    "prophyle_index_build_klcp",
	}
}

// run invokes an external tool, returning ErrExternalTool wrapping its
// combined stdout/stderr on a nonzero exit.
func run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s %v: %s", ErrExternalTool, name, args, out)
	}
	return nil
}
