package cmd

import (
	"context"
	"time"

	"github.com/cozy-labs/cozy-pokedex/core"
	"github.com/cozy-labs/cozy-pokedex/web"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pokedex API over HTTP",
	Long: `Serve the /pokemon routes on localhost:7655, or on --host and --port.

The pokemons are kept in PostgreSQL by default. With --store mongodb they
go to a MongoDB collection, and with --store memory they are lost when the
server stops. Every flag can also be set in pokedex.yaml or with a
COZY_POKEDEX_ environment variable, like COZY_POKEDEX_PG_URL.`,
	Example: `$ cozy-pokedex serve --store memory
$ cozy-pokedex serve --pg-url postgres://pokedex@db:5432/pokedex --collection gen1
$ COZY_POKEDEX_STORE_KIND=mongodb cozy-pokedex serve -p 8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server := &web.Server{
			Host:     viper.GetString("host"),
			Port:     viper.GetInt("port"),
			CertFile: viper.GetString("tls.cert"),
			KeyFile:  viper.GetString("tls.key"),
		}

		logger, err := initLogger()
		if err != nil {
			return err
		}
		server.Logger = logger

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		store, closeStore, err := initStore(ctx, logger)
		if err != nil {
			return err
		}
		defer closeStore()
		server.Service = core.NewService(store, logger)

		return server.ListenAndServe()
	},
}
