package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultPort         = 5001
	defaultDatabaseURL  = "data/duudl.db"
	defaultSecretKey    = "dev"
	defaultSitePassword = "wattifnatt"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	SecretKey    string
	SitePassword string
	PasswordHash string
	LogMode      string
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags reads flags, then falls back to env variables, then defaults
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("duudl", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL or sqlite file path")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.LogMode, "log", "", "Log mode (auto, production, development)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SecretKey, "secret", "", "Session signing key (prefer env)")
	fs.StringVar(&cfg.SitePassword, "password", "", "Site password (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = defaultPort
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = firstEnv("DATABASE_URL", "DUUDL_DB_PATH")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.LogMode == "" {
		cfg.LogMode = os.Getenv("LOG_MODE")
		if cfg.LogMode == "" {
			cfg.LogMode = "auto"
		}
	}

	if cfg.SecretKey == "" {
		key, err := loadSecretKey()
		if err != nil {
			return Config{}, err
		}
		cfg.SecretKey = key
	}

	// A bcrypt hash wins over a plain password
	cfg.PasswordHash = os.Getenv("DUUDL_PASSWORD_HASH")
	if cfg.SitePassword == "" {
		cfg.SitePassword = os.Getenv("DUUDL_PASSWORD")
	}
	if cfg.SitePassword == "" && cfg.PasswordHash == "" {
		cfg.SitePassword = defaultSitePassword
	}

	return cfg, nil
}

// loadSecretKey prefers DUUDL_SECRET_KEY, then the file named by
// DUUDL_SECRET_KEY_FILE, then the development default.
func loadSecretKey() (string, error) {
	if key := os.Getenv("DUUDL_SECRET_KEY"); key != "" {
		return key, nil
	}
	if path := os.Getenv("DUUDL_SECRET_KEY_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read DUUDL_SECRET_KEY_FILE: %w", err)
		}
		if key := strings.TrimSpace(string(b)); key != "" {
			return key, nil
		}
	}
	return defaultSecretKey, nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
