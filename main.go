// Command cozy-pokedex serves a pokedex over HTTP. The pokemons can be kept
// in PostgreSQL, in MongoDB or in memory.
package main

import (
	"fmt"
	"os"

	"github.com/cozy-labs/cozy-pokedex/cmd"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cozy-pokedex: %s\n", err)
		os.Exit(1)
	}
}
