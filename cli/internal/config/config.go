// Package config resolves CLI settings from config files, .env files and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/satishbabariya/schema-forge/internal/debug"
)

// AppFs is the filesystem every CLI command reads and writes through.
var AppFs = afero.NewOsFs()

const (
	configName = ".schemaforge"
	envPrefix  = "SCHEMAFORGE"
)

// Config holds the application configuration
type Config struct {
	SchemaDir   string
	Provider    string
	DatabaseURL string
	StateDir    string
	MinVersion  string
	Debug       bool
	// File is the config file that was read, empty when none was found.
	File string
}

// SnapshotPath is where migrate keeps the last applied batch.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.StateDir, "snapshot.schema")
}

// Load resolves the configuration. An explicit configFile must exist;
// otherwise .schemaforge.yaml is looked up in the working directory, the
// home directory and ~/.config/schemaforge.
func Load(configFile string) (*Config, error) {
	if err := loadDotEnv(".env", false); err != nil {
		return nil, err
	}
	if err := loadDotEnv(".env.local", true); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("schema_dir", "schemas")
	v.SetDefault("provider", "postgres")
	v.SetDefault("state_dir", ".schemaforge")
	v.SetDefault("debug", false)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config", "schemaforge"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		SchemaDir:   v.GetString("schema_dir"),
		Provider:    v.GetString("provider"),
		DatabaseURL: v.GetString("database_url"),
		StateDir:    v.GetString("state_dir"),
		MinVersion:  v.GetString("min_version"),
		Debug:       v.GetBool("debug"),
		File:        v.ConfigFileUsed(),
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}

	debug.Debug("Loaded config", "file", cfg.File, "provider", cfg.Provider, "schema_dir", cfg.SchemaDir)
	return cfg, nil
}

// loadDotEnv exports the variables of a .env file. Without override,
// variables that are already set keep their value.
func loadDotEnv(name string, override bool) error {
	f, err := AppFs.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	for k, val := range vars {
		if !override && os.Getenv(k) != "" {
			continue
		}
		if err := os.Setenv(k, val); err != nil {
			return err
		}
	}
	return nil
}
