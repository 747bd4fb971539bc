// Package config provides configuration file parsing.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hostmaint/hostmaint/internal/models"
	"github.com/spf13/viper"
)

// Parser handles configuration file parsing.
type Parser struct {
	v *viper.Viper
}

// NewParser creates a new configuration parser.
func NewParser() *Parser {
	v := viper.New()
	v.SetConfigType("yaml")
	return &Parser{v: v}
}

// LoadFile loads configuration from a file path.
func (p *Parser) LoadFile(path string) (*models.BackupConfig, error) {
	p.v.SetConfigFile(path)

	if err := p.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return p.parse()
}

// LoadReader loads configuration from a string (useful for testing).
func (p *Parser) LoadReader(content string) (*models.BackupConfig, error) {
	if err := p.v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return p.parse()
}

func (p *Parser) parse() (*models.BackupConfig, error) {
	// Required fields. A missing field fails the load; no partial config
	// is ever returned.
	if !p.v.IsSet("backup_root") {
		return nil, fmt.Errorf("backup_root is required")
	}
	if !p.v.IsSet("min_free_space_gb") {
		return nil, fmt.Errorf("min_free_space_gb is required")
	}
	if !p.v.IsSet("max_backups") {
		return nil, fmt.Errorf("max_backups is required")
	}

	cfg := &models.BackupConfig{
		BackupRoot:     p.expandEnv(p.v.GetString("backup_root")),
		MinFreeSpaceGB: p.v.GetFloat64("min_free_space_gb"),
		MaxBackups:     p.v.GetInt("max_backups"),
		SourceDir:      p.expandEnv(p.v.GetString("source_dir")),
		LogLevel:       p.v.GetString("log_level"),
		MaxLogs:        p.v.GetInt("max_logs"),
	}

	if cfg.BackupRoot == "" {
		return nil, fmt.Errorf("backup_root must not be empty")
	}
	if cfg.MaxBackups <= 0 {
		return nil, fmt.Errorf("max_backups must be a positive integer")
	}

	// Defaults.
	if cfg.LogLevel == "" {
		cfg.LogLevel = "INFO"
	}
	if !p.v.IsSet("max_logs") {
		cfg.MaxLogs = 5
	}
	if cfg.MaxLogs <= 0 {
		return nil, fmt.Errorf("max_logs must be a positive integer")
	}

	return cfg, nil
}

// expandEnv expands environment variables in the format ${VAR} or $VAR.
func (p *Parser) expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Validate performs validation on the loaded configuration.
func Validate(cfg *models.BackupConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if cfg.BackupRoot == "" {
		return fmt.Errorf("backup_root is required")
	}

	if cfg.MaxBackups <= 0 {
		return fmt.Errorf("max_backups must be a positive integer")
	}

	if cfg.MinFreeSpaceGB < 0 {
		return fmt.Errorf("min_free_space_gb must not be negative")
	}

	return nil
}
