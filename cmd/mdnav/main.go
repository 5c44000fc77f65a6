// Command mdnav inspects ECMA-335 metadata in .winmd and .dll files.
package main

import (
	"fmt"
	"os"

	"github.com/andreyvit/clrmeta/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
