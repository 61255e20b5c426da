package main

import (
	"os"

	"github.com/vigneswari-developer/isstracker/internal/output"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		output.Error(os.Stderr, "%v", err)
		os.Exit(1)
	}
}
