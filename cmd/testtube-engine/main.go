// Command testtube-engine serves the simulated chain engine over gRPC so
// test apps in other processes can connect to it.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes the command line in args, writing command output to outW.
func run(ctx context.Context, outW io.Writer, args []string) error {
	root := newRootCmd(outW)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
