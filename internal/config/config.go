package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Sheets      SheetsConfig
	Server      ServerConfig
	Display     DisplayConfig
	Storage     StorageConfig
	Departments DepartmentsConfig
}

type SheetsConfig struct {
	BaseURL        string `toml:"base_url"`
	LookupBaseURL  string `toml:"lookup_base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

type DisplayConfig struct {
	RefreshRateMS int `toml:"refresh_rate_ms"`
}

type StorageConfig struct {
	DBPath        string `toml:"db_path"`
	RetentionDays int    `toml:"retention_days"`
}

type DepartmentsConfig struct {
	// Roster lists the departments shown in the summary view, in row
	// order. Omitting the section keeps the full default roster.
	Roster []string `toml:"roster"`
}

type LoadResult struct {
	Config   Config
	Warnings []string
}

func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Sheets: SheetsConfig{
			BaseURL:        "http://localhost:8090",
			LookupBaseURL:  "http://localhost:8090",
			TimeoutSeconds: 15,
		},
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 8471,
		},
		Display: DisplayConfig{
			RefreshRateMS: 250,
		},
		Storage: StorageConfig{
			DBPath:        filepath.Join(home, ".local", "share", "botboard", "cache.db"),
			RetentionDays: 90,
		},
		Departments: DepartmentsConfig{
			Roster: []string{"CC", "MV Sales", "MV Service", "Parts", "Insurance", "Finance"},
		},
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "botboard", "config.toml")
}

func Load() (*LoadResult, error) {
	return LoadFrom(defaultConfigPath())
}

func LoadFrom(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			return &LoadResult{Config: cfg}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromString(string(data))
}

func LoadFromString(data string) (*LoadResult, error) {
	cfg := DefaultConfig()
	result := &LoadResult{Config: cfg}

	if data == "" {
		return result, nil
	}

	var raw map[string]any
	if _, err := toml.Decode(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	knownTopLevel := map[string]bool{
		"sheets":      true,
		"server":      true,
		"display":     true,
		"storage":     true,
		"departments": true,
	}
	for key := range raw {
		if !knownTopLevel[key] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("unknown config key: %q", key))
		}
	}

	var tf tomlFile
	if _, err := toml.Decode(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	mergeFromRaw(&result.Config, &tf, raw)

	if err := validate(&result.Config); err != nil {
		return nil, err
	}

	return result, nil
}

type tomlFile struct {
	Sheets      *SheetsConfig      `toml:"sheets"`
	Server      *ServerConfig      `toml:"server"`
	Display     *DisplayConfig     `toml:"display"`
	Storage     *StorageConfig     `toml:"storage"`
	Departments *DepartmentsConfig `toml:"departments"`
}

// mergeFromRaw copies only the keys actually present in the file, so a
// partial config keeps defaults for everything it does not mention.
func mergeFromRaw(cfg *Config, tf *tomlFile, raw map[string]any) {
	if tf.Sheets != nil {
		if section, ok := rawSection(raw, "sheets"); ok {
			if _, exists := section["base_url"]; exists {
				cfg.Sheets.BaseURL = tf.Sheets.BaseURL
			}
			if _, exists := section["lookup_base_url"]; exists {
				cfg.Sheets.LookupBaseURL = tf.Sheets.LookupBaseURL
			}
			if _, exists := section["timeout_seconds"]; exists {
				cfg.Sheets.TimeoutSeconds = tf.Sheets.TimeoutSeconds
			}
		}
	}
	if tf.Server != nil {
		if section, ok := rawSection(raw, "server"); ok {
			if _, exists := section["bind"]; exists {
				cfg.Server.Bind = tf.Server.Bind
			}
			if _, exists := section["port"]; exists {
				cfg.Server.Port = tf.Server.Port
			}
		}
	}
	if tf.Display != nil {
		if section, ok := rawSection(raw, "display"); ok {
			if _, exists := section["refresh_rate_ms"]; exists {
				cfg.Display.RefreshRateMS = tf.Display.RefreshRateMS
			}
		}
	}
	if tf.Storage != nil {
		if section, ok := rawSection(raw, "storage"); ok {
			if _, exists := section["db_path"]; exists {
				cfg.Storage.DBPath = tf.Storage.DBPath
			}
			if _, exists := section["retention_days"]; exists {
				cfg.Storage.RetentionDays = tf.Storage.RetentionDays
			}
		}
	}
	if tf.Departments != nil {
		if section, ok := rawSection(raw, "departments"); ok {
			if _, exists := section["roster"]; exists {
				cfg.Departments.Roster = tf.Departments.Roster
			}
		}
	}
}

func rawSection(raw map[string]any, key string) (map[string]any, bool) {
	v, ok := raw[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

func validate(cfg *Config) error {
	var errs []string

	if !strings.HasPrefix(cfg.Sheets.BaseURL, "http://") && !strings.HasPrefix(cfg.Sheets.BaseURL, "https://") {
		errs = append(errs, fmt.Sprintf("sheets base_url must be an http(s) URL, got %q", cfg.Sheets.BaseURL))
	}
	if !strings.HasPrefix(cfg.Sheets.LookupBaseURL, "http://") && !strings.HasPrefix(cfg.Sheets.LookupBaseURL, "https://") {
		errs = append(errs, fmt.Sprintf("sheets lookup_base_url must be an http(s) URL, got %q", cfg.Sheets.LookupBaseURL))
	}
	if cfg.Sheets.TimeoutSeconds < 1 {
		errs = append(errs, fmt.Sprintf("sheets timeout_seconds must be positive, got %d", cfg.Sheets.TimeoutSeconds))
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server port must be 1-65535, got %d", cfg.Server.Port))
	}

	if cfg.Display.RefreshRateMS < 1 {
		errs = append(errs, fmt.Sprintf("display refresh_rate_ms must be positive, got %d", cfg.Display.RefreshRateMS))
	}

	if cfg.Storage.RetentionDays < 1 {
		errs = append(errs, fmt.Sprintf("storage retention_days must be positive, got %d", cfg.Storage.RetentionDays))
	}

	if len(cfg.Departments.Roster) == 0 {
		errs = append(errs, "departments roster must not be empty")
	}
	for _, name := range cfg.Departments.Roster {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, "departments roster must not contain blank entries")
			break
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation error: %s", strings.Join(errs, "; "))
	}
	return nil
}
