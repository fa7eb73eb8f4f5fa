// Command gridplot shows geospatial files on a pannable, zoomable plot in the
// terminal and exports the same view as PNG.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
