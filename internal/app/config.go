package app

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

const (
	defaultStorageName    = "attendance-storage"
	defaultStorageDSN     = "rollcall.db"
	defaultTimeoutSeconds = 10
	defaultExportSchedule = "*/30 * * * *"
)

type GSheetConfig struct {
	SheetID         string   `toml:"sheet_id"`
	SheetName       string   `toml:"sheet_name"`
	CredentialsPath string   `toml:"credentials_path"`
	Schedule        string   `toml:"schedule"`
	StartCell       string   `toml:"start_cell"`
	TimestampRange  string   `toml:"timestamp_range"`
	EmojiVariants   []string `toml:"emoji_variants"`
}

type Config struct {
	Server struct {
		Port       string `toml:"port"`
		EnableAuth bool   `toml:"enable_auth"`
	} `toml:"server"`

	API struct {
		BaseURL        string `toml:"base_url"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
	} `toml:"api"`

	Storage struct {
		DSN           string `toml:"dsn"`
		Name          string `toml:"name"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"storage"`

	Bot struct {
		Token    string  `toml:"token"`
		AdminIDs []int64 `toml:"admin_ids"`
	} `toml:"bot"`

	GSheet GSheetConfig `toml:"gsheet"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return ParseConfig(path, data)
}

func ParseConfig(path string, data []byte) (*Config, error) {
	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.API.BaseURL == "" {
		return nil, fmt.Errorf("API base_url is not specified in config, use a value like https://attendance.example.edu/api")
	}
	if config.API.TimeoutSeconds <= 0 {
		config.API.TimeoutSeconds = defaultTimeoutSeconds
	}
	if config.Storage.DSN == "" {
		config.Storage.DSN = defaultStorageDSN
	}
	if config.Storage.Name == "" {
		config.Storage.Name = defaultStorageName
	}
	if config.GSheet.Schedule == "" {
		config.GSheet.Schedule = defaultExportSchedule
	}

	logger.Debug.Printf("Loaded storage config: %+v", config.Storage)

	return &config, nil
}

// RequireServer checks what only the HTTP front-end needs.
func (c *Config) RequireServer() error {
	if c.Server.Port == "" {
		return fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}
	return nil
}

func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}
