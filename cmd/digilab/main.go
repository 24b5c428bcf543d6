// Command digilab is a journaled workbench for number-system exercises:
// base conversion, complements, BCD, Gray code, parity and checksums.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/digilab/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
