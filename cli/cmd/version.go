package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/ardnew/docxform/pkg"
)

// Version prints the program version.
type Version struct {
	Verbose bool `help:"Include the Go version and platform" short:"v"`
}

// Run executes the version command.
func (v *Version) Run(context.Context) error {
	if !v.Verbose {
		_, err := fmt.Fprintln(os.Stdout, pkg.Name, pkg.Version)

		return err
	}

	_, err := fmt.Fprintf(os.Stdout, "%s %s (%s %s/%s)\n",
		pkg.Name, pkg.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)

	return err
}
