package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the provided path. If path is empty, the
// MCMD_CONFIG environment variable is consulted, then DefaultConfigPath.
// A missing file is not an error; the defaults apply.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv("MCMD_CONFIG")
	}
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("host.url", cfg.Host.URL)
	v.SetDefault("api.login", cfg.API.Login)
	v.SetDefault("api.rest1", cfg.API.Rest1)
	v.SetDefault("api.rest2", cfg.API.Rest2)
	v.SetDefault("api.perm", cfg.API.Perm)
	v.SetDefault("api.member", cfg.API.Member)
	v.SetDefault("api.group", cfg.API.Group)
	v.SetDefault("api.import", cfg.API.Import)
	v.SetDefault("api.import_url", cfg.API.ImportURL)
	v.SetDefault("auth.username", cfg.Auth.Username)
	v.SetDefault("auth.password", cfg.Auth.Password)
	v.SetDefault("script.root", cfg.Script.Root)
	v.SetDefault("history.path", cfg.History.Path)
	v.SetDefault("http.timeout_seconds", cfg.HTTP.TimeoutSeconds)

	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Script.Root = expandEnv(cfg.Script.Root)
	cfg.History.Path = expandEnv(cfg.History.Path)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

// WriteDefault writes a starter config to the target path. Refuses to clobber
// an existing file unless overwrite is set.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
