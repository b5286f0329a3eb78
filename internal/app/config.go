package app

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

const (
	envDatabaseDSN = "TEACHTEAM_DATABASE_DSN"
	envRedisURL    = "TEACHTEAM_REDIS_URL"
)

type GSheetConfig struct {
	SheetID         string `toml:"sheet_id"`
	SheetName       string `toml:"sheet_name"`
	CredentialsPath string `toml:"credentials_path"`
	ChartRange      string `toml:"chart_range"`
	TimestampRange  string `toml:"timestamp_range"`
	Schedule        string `toml:"schedule"`
	Limit           int    `toml:"limit"`
}

type Config struct {
	Server struct {
		Port           string   `toml:"port"`
		EnableAuth     bool     `toml:"enable_auth"`
		AllowedOrigins []string `toml:"allowed_origins"`
	} `toml:"server"`

	Auth struct {
		RedisURL         string `toml:"redis_url"`
		TokenHeader      string `toml:"token_header"`
		TokenKeyTemplate string `toml:"token_key_template"`
	} `toml:"auth"`

	API struct {
		LecturerHeader string `toml:"lecturer_header"`
	} `toml:"api"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Chart struct {
		DefaultLimit int `toml:"default_limit"`
	} `toml:"chart"`

	GSheet map[string][]GSheetConfig `toml:"gsheet"`
}

// LoadConfig reads the TOML file at path. Values from a .env file or the
// process environment override the database DSN and redis URL.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if err := godotenv.Load(); err != nil {
		logger.Debug.Printf("No .env file loaded: %v", err)
	}
	if dsn := os.Getenv(envDatabaseDSN); dsn != "" {
		config.Database.DSN = dsn
	}
	if url := os.Getenv(envRedisURL); url != "" {
		config.Auth.RedisURL = url
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}
	if config.Database.DSN == "" {
		return nil, fmt.Errorf("Database DSN is not specified in config or %s", envDatabaseDSN)
	}
	if config.Database.MigrationsDir == "" {
		config.Database.MigrationsDir = "./migrations"
	}
	if config.API.LecturerHeader == "" {
		config.API.LecturerHeader = "X-Lecturer-Email"
	}
	if config.Auth.TokenHeader == "" {
		config.Auth.TokenHeader = "Authorization"
	}
	if config.Auth.TokenKeyTemplate == "" {
		config.Auth.TokenKeyTemplate = "auth:{lecturer}"
	}
	if config.Chart.DefaultLimit <= 0 {
		config.Chart.DefaultLimit = 10
	}

	logger.Debug.Printf("Loaded chart config: %+v", config.Chart)

	return &config, nil
}
