// Command quackc compiles a single Quack source file to per-class
// stack-VM assembly listings. A thin wrapper over internal/compiler,
// grounded on cmd/funxy/main.go's own thin-main-over-internal-package
// shape.
package main

import (
	"errors"
	"os"

	"github.com/quack-lang/quackc/internal/compiler"
)

func main() {
	err := compiler.Run(os.Args[1:], os.Stdout, os.Stderr)
	if err == nil {
		os.Exit(0)
	}
	var usage *compiler.UsageError
	if errors.As(err, &usage) {
		os.Exit(2)
	}
	os.Exit(1)
}
