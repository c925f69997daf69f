package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/pkg/errors"
	"github.com/shenwei356/go-logging"
	"github.com/spf13/cobra"
)

// log is the package-level logging backend, wired up in cmd/prophyle/main.go
// exactly as unikmer/main.go does for unikmer's own cmd package: one
// colorized backend, raised to DEBUG by --verbose via getOptions.
var log = logging.MustGetLogger("prophyle")

// checkError is the single point where a fatal library error becomes a
// log message and a non-zero process exit, matching unikmer/cmd's own
// checkError convention: library packages (tree, propagate, index, block,
// assign, output) always return error. Apart from this function, only
// Execute in root.go calls os.Exit (status 2 on a parse/usage error).
func checkError(err error) {
	if err == nil {
		return
	}
	log.Errorf("%s", err)
	os.Exit(1)
}

// Options holds the global (persistent) flags shared by every subcommand.
type Options struct {
	NumCPUs int
	Verbose bool
}

func getOptions(cmd *cobra.Command) *Options {
	opt := &Options{
		NumCPUs: getFlagPositiveInt(cmd, "threads"),
		Verbose: getFlagBool(cmd, "verbose"),
	}
	if opt.Verbose {
		logging.SetLevel(logging.DEBUG, "prophyle")
	}
	runtime.GOMAXPROCS(opt.NumCPUs)
	return opt
}

func getFlagInt(cmd *cobra.Command, flag string) int {
	v, err := cmd.Flags().GetInt(flag)
	checkError(errors.Wrapf(err, "flag --%s", flag))
	return v
}

func getFlagPositiveInt(cmd *cobra.Command, flag string) int {
	v := getFlagInt(cmd, flag)
	if v <= 0 {
		checkError(fmt.Errorf("value of flag --%s should be positive, got %d", flag, v))
	}
	return v
}

func getFlagNonNegativeInt(cmd *cobra.Command, flag string) int {
	v := getFlagInt(cmd, flag)
	if v < 0 {
		checkError(fmt.Errorf("value of flag --%s should be non-negative, got %d", flag, v))
	}
	return v
}

func getFlagBool(cmd *cobra.Command, flag string) bool {
	v, err := cmd.Flags().GetBool(flag)
	checkError(errors.Wrapf(err, "flag --%s", flag))
	return v
}

func getFlagString(cmd *cobra.Command, flag string) string {
	v, err := cmd.Flags().GetString(flag)
	checkError(errors.Wrapf(err, "flag --%s", flag))
	return v
}

func getFlagFloat64(cmd *cobra.Command, flag string) float64 {
	v, err := cmd.Flags().GetFloat64(flag)
	checkError(errors.Wrapf(err, "flag --%s", flag))
	return v
}
