package main

import (
	"os"

	"github.com/arthur-debert/menuinst/cmd/menuinst"
)

func main() {
	os.Exit(menuinst.Execute())
}
