package postgres

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/shrimpsizemoose/rollcall/internal/store"
)

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &PostgresStore{BaseStore: store.BaseStore{
		DB:        db,
		Converter: numberPlaceholders,
	}}, nil
}

// numberPlaceholders rewrites ? bindvars into $1, $2, ...
func numberPlaceholders(query string) string {
	out := query
	for i := 1; strings.Contains(out, "?"); i++ {
		out = strings.Replace(out, "?", fmt.Sprintf("$%d", i), 1)
	}
	return out
}

func (s *PostgresStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, nil)
}
