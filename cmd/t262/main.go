package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/t262/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	code := cli.GetExitCode(err)

	// A failed run has already printed its report.
	var exitErr *cli.ExitError
	if err != nil && !(errors.As(err, &exitErr) && exitErr.Code == cli.ExitFailure) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(code)
}
