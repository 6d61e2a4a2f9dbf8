package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, &app{}, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// run ejecuta un comando y cierra el storage aunque el comando falle.
func run(ctx context.Context, a *app, args []string) error {
	defer a.close()

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
