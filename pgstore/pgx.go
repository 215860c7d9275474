package pgstore

import (
	"context"
	"log/slog"

	"github.com/cozy-labs/cozy-pokedex/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
)

func NewPgxConfig(pgURL string, logger *slog.Logger) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(pgURL)
	if err != nil {
		return nil, err
	}
	// Trace the SQL queries and send the result in logs.
	config.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   &pgxLogger{l: logger},
		LogLevel: tracelog.LogLevelInfo,
	}
	// In exec mode, the statements are sent with their arguments in a single
	// round trip and never prepared. The type OID of each parameter then
	// comes from the Go type of the argument, not from the server.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec
	// Maps and documents would be sent as json, that the || operator of the
	// updates does not accept, so they are registered as jsonb.
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		tm := conn.TypeMap()
		tm.RegisterDefaultPgType(map[string]any{}, "jsonb")
		tm.RegisterDefaultPgType(document{}, "jsonb")
		return nil
	}
	return config, nil
}

// NewPool opens a pool of connections to PostgreSQL with the SQL queries
// traced in the logs.
func NewPool(ctx context.Context, pgURL string, logger *slog.Logger) (*pgxpool.Pool, error) {
	config, err := NewPgxConfig(pgURL, logger)
	if err != nil {
		return nil, err
	}
	return pgxpool.NewWithConfig(ctx, config)
}

type pgxLogger struct {
	l *slog.Logger
}

func (l *pgxLogger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	attrs := make([]slog.Attr, 0, len(data)+2)
	for k, v := range data {
		attrs = append(attrs, slog.Any(k, v))
	}
	attrs = append(attrs,
		slog.String("nspace", "sql"),
		slog.Any("req_id", ctx.Value(core.RequestIDKey{})),
	)
	lvl := slog.LevelDebug
	if level == tracelog.LogLevelError {
		lvl = slog.LevelWarn
	}
	l.l.LogAttrs(ctx, lvl, msg, attrs...)
}
