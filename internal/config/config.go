package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config is the resolved mcmd configuration: the target MOLGENIS host, the
// per-endpoint API paths, credentials, and local paths.
type Config struct {
	Host    HostConfig    `mapstructure:"host" yaml:"host"`
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Auth    AuthConfig    `mapstructure:"auth" yaml:"auth"`
	Script  ScriptConfig  `mapstructure:"script" yaml:"script"`
	History HistoryConfig `mapstructure:"history" yaml:"history"`
	HTTP    HTTPConfig    `mapstructure:"http" yaml:"http"`
}

type HostConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// APIConfig holds the path of every logical endpoint, relative to the host URL.
type APIConfig struct {
	Login     string `mapstructure:"login" yaml:"login"`
	Rest1     string `mapstructure:"rest1" yaml:"rest1"`
	Rest2     string `mapstructure:"rest2" yaml:"rest2"`
	Perm      string `mapstructure:"perm" yaml:"perm"`
	Member    string `mapstructure:"member" yaml:"member"`
	Group     string `mapstructure:"group" yaml:"group"`
	Import    string `mapstructure:"import" yaml:"import"`
	ImportURL string `mapstructure:"import_url" yaml:"import_url"`
}

type AuthConfig struct {
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

type ScriptConfig struct {
	Root string `mapstructure:"root" yaml:"root"`
}

type HistoryConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// DefaultConfigPath returns ~/.mcmd/mcmd.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".mcmd", "mcmd.yaml"), nil
}

// DefaultConfig returns the built-in defaults, pointed at a local MOLGENIS.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		Host: HostConfig{URL: "http://localhost:8080"},
		API: APIConfig{
			Login:     "api/v1/login",
			Rest1:     "api/v1/",
			Rest2:     "api/v2/",
			Perm:      "menu/admin/permissionmanager/update/",
			Member:    "api/plugin/security/group/%s/member",
			Group:     "api/plugin/security/group",
			Import:    "plugin/importwizard/importFile",
			ImportURL: "plugin/importwizard/importByUrl",
		},
		Auth:    AuthConfig{Username: "admin"},
		Script:  ScriptConfig{Root: filepath.Join(home, ".mcmd", "scripts")},
		History: HistoryConfig{Path: filepath.Join(home, ".mcmd", "history")},
		HTTP:    HTTPConfig{TimeoutSeconds: 30},
	}, nil
}

// EndpointURL joins an endpoint path to the configured host URL.
func (c Config) EndpointURL(path string) string {
	return strings.TrimRight(c.Host.URL, "/") + "/" + strings.TrimLeft(path, "/")
}

// MemberURL fills the group name into the member endpoint path.
func (c Config) MemberURL(group string) string {
	return c.EndpointURL(fmt.Sprintf(c.API.Member, group))
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Host.URL) == "" {
		return fmt.Errorf("host.url is required")
	}
	if !strings.Contains(c.Host.URL, "://") {
		return fmt.Errorf("host.url must include a scheme (e.g. https://molgenis.example.org)")
	}
	if strings.TrimSpace(c.Auth.Username) == "" {
		return fmt.Errorf("auth.username is required")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be positive")
	}
	return nil
}
