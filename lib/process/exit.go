// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"os"
)

// Exit codes. A clean close of the control connection is a successful
// end of the session; everything else that ends the process is a failure.
const (
	ExitClean = 0
	ExitFatal = 1
)

// Fatal writes "error: err" to stderr and exits with ExitFatal. Use it in
// main() for errors from run() where the structured logger may not be
// initialized.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(ExitFatal)
}
