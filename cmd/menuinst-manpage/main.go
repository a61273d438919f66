package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/menuinst/cmd/menuinst"
	"github.com/arthur-debert/menuinst/internal/version"
)

func main() {
	rootCmd := menuinst.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "MENUINST",
		Section: "1",
		Source:  "menuinst " + version.Version,
		Manual:  "menuinst manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
