package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Pictures PicturesConfig `yaml:"pictures"`
	AWS      AWSConfig      `yaml:"aws"`
	Push     PushConfig     `yaml:"push"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// AuthConfig holds token and password hashing configuration
type AuthConfig struct {
	TokenKey    string `yaml:"token_key"`
	TokenExpSec int    `yaml:"token_exp_seconds"`
	HashCost    int    `yaml:"hash_cost"`
}

// PicturesConfig holds picture upload configuration
type PicturesConfig struct {
	MaxBytes int `yaml:"max_bytes"`
}

// AWSConfig holds AWS configuration for the picture blob store
type AWSConfig struct {
	Region    string `yaml:"region"`
	S3Bucket  string `yaml:"s3_bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"` // custom S3-compatible endpoint, optional
}

// PushConfig holds APNs configuration
type PushConfig struct {
	Enabled     bool   `yaml:"enabled"`
	P12Path     string `yaml:"p12_path"`
	P12Password string `yaml:"p12_password"`
	Topic       string `yaml:"topic"`
	Production  bool   `yaml:"production"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Auth.TokenExpSec <= 0 {
		cfg.Auth.TokenExpSec = 3600
	}
	if cfg.Pictures.MaxBytes <= 0 {
		cfg.Pictures.MaxBytes = 5 << 20
	}

	return &cfg, nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
