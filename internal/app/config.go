package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

type Config struct {
	Server struct {
		Port      string `toml:"port"`
		PublicDir string `toml:"public_dir"`
	} `toml:"server"`

	Auth struct {
		AuthorizedEmails []string `toml:"authorized_emails"`
		RedisURL         string   `toml:"redis_url"`
		CookieName       string   `toml:"cookie_name"`
		SessionTTLHours  int      `toml:"session_ttl_hours"`
	} `toml:"auth"`

	Google struct {
		ClientID     string `toml:"client_id"`
		ClientSecret string `toml:"client_secret"`
		RedirectURL  string `toml:"redirect_url"`
	} `toml:"google"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Uploads struct {
		MaxSizeBytes int64 `toml:"max_size_bytes"`
	} `toml:"uploads"`
}

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

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :3000")
	}
	if config.Server.PublicDir == "" {
		config.Server.PublicDir = "./public"
	}
	if config.Auth.CookieName == "" {
		config.Auth.CookieName = "grandstand_session"
	}
	if config.Auth.SessionTTLHours <= 0 {
		config.Auth.SessionTTLHours = 24
	}
	if config.Uploads.MaxSizeBytes <= 0 {
		config.Uploads.MaxSizeBytes = 5 << 20
	}

	logger.Debug.Printf("Loaded config with %d authorized admin emails", len(config.Auth.AuthorizedEmails))

	return &config, nil
}
