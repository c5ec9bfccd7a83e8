package store

import "strings"

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
	DBTypeRedis    DatabaseType = "redis"
)

type DBConfig struct {
	DSN  string
	Type DatabaseType
}

func ParseDSN(dsn string) DBConfig {
	dbType := DBTypeSQLite
	switch {
	case strings.HasPrefix(dsn, "postgres"):
		dbType = DBTypePostgres
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		dbType = DBTypeRedis
	}
	return DBConfig{DSN: dsn, Type: dbType}
}

type StorageRow struct {
	Name      string `db:"name"`
	Payload   string `db:"payload"`
	UpdatedAt int64  `db:"updated_at"`
}
