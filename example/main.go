// The store binary runs the example artifact store directly: parsing,
// help and errors are handled by the framework, with configuration
// read from the usual places.
package main

import (
	"os"
	"path/filepath"

	"github.com/reeflective/decree"

	"github.com/reeflective/decree/example/store"
)

func main() {
	configs := []string{"store.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		configs = append(configs, filepath.Join(home, ".config", "store", "config.yml"))
	}

	decree.Main(store.New(),
		decree.WithEnvPrefix("store"),
		decree.WithConfigFiles(configs...),
	)
}
