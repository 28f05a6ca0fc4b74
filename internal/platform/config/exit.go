package config

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Process exit seams, replaced in tests.
var (
	exitWriter io.Writer = os.Stderr
	exitFunc             = os.Exit
)

// Exitf prints a startup diagnostic on stderr and terminates the process with
// status 1. The message always ends in exactly one newline.
func Exitf(format string, args ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	fmt.Fprintln(exitWriter, msg)
	exitFunc(1)
}
