// Command bindprobe shows how the model binder reads a query string: which
// keys sit below a prefix, whether a prefix is present, and what a sample
// order form binds to together with its model state.
package main

import "os"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
