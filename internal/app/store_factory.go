package app

import (
	"fmt"

	"github.com/shrimpsizemoose/rollcall/internal/store"
	"github.com/shrimpsizemoose/rollcall/internal/store/postgres"
	"github.com/shrimpsizemoose/rollcall/internal/store/redis"
	"github.com/shrimpsizemoose/rollcall/internal/store/sqlite"
)

func NewStore(dsn string) (store.StateStore, error) {
	config := store.ParseDSN(dsn)

	switch config.Type {
	case store.DBTypePostgres:
		return postgres.NewPostgresStore(config.DSN)
	case store.DBTypeRedis:
		return redis.NewRedisStore(config.DSN)
	case store.DBTypeSQLite:
		return sqlite.NewSQLiteStore(config.DSN)
	default:
		return nil, fmt.Errorf("unable to determine database type from DSN: %s", dsn)
	}
}
