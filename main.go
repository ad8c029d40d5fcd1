package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/offshoot-dev/offshoot/cmd"
	"github.com/offshoot-dev/offshoot/internal/errors"
)

// exitInterrupted is the conventional 128+SIGINT status.
const exitInterrupted = 130

func main() {
	var interrupted atomic.Bool

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range sigs {
			interrupted.Store(true)
		}
	}()

	err := cmd.Execute(context.Background())

	if interrupted.Load() {
		os.Exit(exitInterrupted)
	}
	if err != nil {
		if !errors.Is(err, errors.KindAborted) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(errors.GetExitCode(err))
	}
}
