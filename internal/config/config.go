package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const localDir = ".habitus"

// Config represents the application configuration
type Config struct {
	DBPath    string `yaml:"db_path"`
	BackupDir string `yaml:"backup_dir"`
	LogLevel  string `yaml:"log_level"`
	LogFile   string `yaml:"log_file"`
	Lang      string `yaml:"lang"`
	Output    string `yaml:"output"`
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/habitus/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel: "warn",
		Output:   "table",
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// YAML config is optional
	_ = loadYAMLConfig(cfg)

	// Override with environment variables
	if dbPath := getEnvOrFile("HABITUS_DB_PATH", "HABITUS_DB_PATH_FILE"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if backupDir := os.Getenv("HABITUS_BACKUP_DIR"); backupDir != "" {
		cfg.BackupDir = backupDir
	}
	if logLevel := os.Getenv("HABITUS_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFile := os.Getenv("HABITUS_LOG_FILE"); logFile != "" {
		cfg.LogFile = logFile
	}
	if lang := os.Getenv("HABITUS_LANG"); lang != "" {
		cfg.Lang = lang
	}
	if output := os.Getenv("HABITUS_OUTPUT"); output != "" {
		cfg.Output = output
	}

	// Set defaults if not configured
	if cfg.DBPath == "" {
		// Check for project-local database first
		local := filepath.Join(localDir, "habitus.db")
		if _, err := os.Stat(local); err == nil {
			cfg.DBPath = local
		} else {
			dataDir, err := userDataDir()
			if err != nil {
				return nil, err
			}
			cfg.DBPath = filepath.Join(dataDir, "habitus.db")
		}
	}

	if cfg.BackupDir == "" {
		// Keep backups next to a project-local database
		if cfg.DBPath == filepath.Join(localDir, "habitus.db") {
			cfg.BackupDir = filepath.Join(localDir, "backups")
		} else {
			dataDir, err := userDataDir()
			if err != nil {
				return nil, err
			}
			cfg.BackupDir = filepath.Join(dataDir, "backups")
		}
	}

	return cfg, nil
}

func userDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "habitus"), nil
}

// loadYAMLConfig loads configuration from ~/.config/habitus/config.yaml
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Join(homeDir, ".config", "habitus", "config.yaml"))
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		if data, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(data))
		}
	}

	return ""
}

// findEnvLocal searches for .env.local from the working directory upwards,
// stopping at the home directory or the filesystem root.
func findEnvLocal() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	stop := ""
	if homeDir, err := os.UserHomeDir(); err == nil {
		stop = filepath.Clean(homeDir)
	}

	for dir := filepath.Clean(cwd); ; {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		parent := filepath.Dir(dir)
		if dir == stop || parent == dir {
			return ""
		}
		dir = parent
	}
}
