package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/rollcall/internal/models"
)

// StateStore keeps named tracker snapshots across restarts.
type StateStore interface {
	Close() error
	ApplyMigrations(dir string) error

	// Load returns nil, nil when nothing was saved under name yet.
	Load(ctx context.Context, name string) (*models.Snapshot, error)
	Save(ctx context.Context, name string, snapshot *models.Snapshot) error
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		logger.Debug.Printf("Applying migration: %s", file.Name())
		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) Load(ctx context.Context, name string) (*models.Snapshot, error) {
	var payload string
	query := s.Converter(`
		SELECT payload
		FROM storage
		WHERE name = ?
	`)

	err := s.DB.GetContext(ctx, &payload, query, name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", name, err)
	}

	return Decode([]byte(payload))
}

func (s *BaseStore) Save(ctx context.Context, name string, snapshot *models.Snapshot) error {
	payload, err := Encode(snapshot)
	if err != nil {
		return err
	}

	_, err = s.DB.NamedExecContext(ctx, `
		INSERT INTO storage (name, payload, updated_at)
		VALUES (:name, :payload, :updated_at)
		ON CONFLICT (name) DO UPDATE SET
		payload = excluded.payload,
		updated_at = excluded.updated_at
	`, StorageRow{
		Name:      name,
		Payload:   string(payload),
		UpdatedAt: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", name, err)
	}
	return nil
}

func Encode(snapshot *models.Snapshot) ([]byte, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return payload, nil
}

func Decode(payload []byte) (*models.Snapshot, error) {
	var snapshot models.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}
