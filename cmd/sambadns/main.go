// sambadns converges DNS records and zones on a Samba AD domain controller
// by driving samba-tool dns. It runs one-shot from the command line or as
// an HTTP service.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// Version and BuildDate are set via ldflags during build.
// Example: -ldflags="-X main.Version=v1.0.0 -X main.BuildDate=2026-10-19"
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// exitError ends the process with a code and no further message. The
// command has already reported the failure on stdout.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	os.Exit(execute(newApp(), os.Args[1:]))
}

func execute(a *app, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		a.logger.Error("fatal error", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
