// The app binary runs the same artifact store through the cobra
// bridge, which adds carapace shell completion on top of the native
// parser.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/reeflective/decree"
	"github.com/reeflective/decree/gen/cobra"

	"github.com/reeflective/decree/example/store"
)

func main() {
	root, err := cobra.Bridge(store.New())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if err := root.Execute(); err != nil {
		var exit *decree.ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}

		os.Exit(1)
	}
}
