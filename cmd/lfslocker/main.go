// Command lfslocker keeps Git LFS locks in step with the files you modify.
package main

import (
	"fmt"
	"os"

	"github.com/Iron-Ham/lfslocker/internal/cmd"
	"github.com/Iron-Ham/lfslocker/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lfslocker: %v\n", err)
		os.Exit(errors.ExitCode(err))
	}
}
