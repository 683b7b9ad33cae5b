// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"os"
	"runtime"

	"lumiband/cmd"
	applog "lumiband/internal/log"
	"lumiband/pkg/build"
)

func main() {
	// Development builds run without ldflags and keep the defaults.
	if err := build.Initialize(); err != nil {
		applog.Debugf("Build info incomplete: %v", err)
	}

	// One thread for the tick loop, one for UI and I/O.
	runtime.GOMAXPROCS(2)

	if err := cmd.Execute(context.Background(), os.Args[1:]); err != nil {
		applog.Fatal(err)
	}
}
