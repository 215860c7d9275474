package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"log/syslog"
	"os"
	"strings"
	"time"

	"github.com/cozy-labs/cozy-pokedex/core"
	"github.com/cozy-labs/cozy-pokedex/memstore"
	"github.com/cozy-labs/cozy-pokedex/mongostore"
	"github.com/cozy-labs/cozy-pokedex/pgstore"
	"github.com/lmittmann/tint"
	"github.com/spf13/viper"
)

func initConfig() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetEnvPrefix("COZY_POKEDEX")
	viper.AutomaticEnv()

	viper.SetConfigName("pokedex")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/cozy/")
	viper.AddConfigPath("$HOME/.cozy")
	viper.AddConfigPath(".")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	err := viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil // No config file is OK
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot read configuration file: %s\n", err)
		os.Exit(1)
	}
}

func initLogger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log.level"))); err != nil {
		return nil, err
	}

	if viper.GetBool("log.syslog") {
		w, err := syslog.New(syslog.LOG_INFO|syslog.LOG_USER, "cozy-pokedex")
		if err != nil {
			return nil, err
		}
		handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
		return slog.New(handler), nil
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})
	return slog.New(handler), nil
}

// initStore connects to the configured document store and declares the
// unique indexes. The returned function releases the connections.
func initStore(ctx context.Context, logger *slog.Logger) (core.Store, func(), error) {
	collection := viper.GetString("store.collection")
	switch kind := viper.GetString("store.kind"); kind {
	case "postgres":
		pg, err := pgstore.NewPool(ctx, viper.GetString("pg.url"), logger)
		if err != nil {
			return nil, nil, err
		}
		store, err := pgstore.New(pg, collection)
		if err == nil {
			err = store.EnsureSchema(ctx)
		}
		if err != nil {
			pg.Close()
			return nil, nil, err
		}
		return store, pg.Close, nil

	case "mongodb":
		client, err := mongostore.Connect(ctx, viper.GetString("mongodb.url"))
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		store := mongostore.New(client.Database(viper.GetString("mongodb.database")), collection)
		if err := store.EnsureSchema(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		return store, closeFn, nil

	case "memory":
		logger.Warn("The pokemons are kept in memory and will be lost on exit",
			slog.String("nspace", "store"))
		return memstore.New(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q", kind)
	}
}
