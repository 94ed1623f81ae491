// Package config 提供配置管理
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Engine   EngineConfig   `yaml:"engine"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// EngineConfig 排班引擎配置
type EngineConfig struct {
	DefaultTimeout     time.Duration `yaml:"default_timeout"`
	MaxShiftsPerDay    int           `yaml:"max_shifts_per_day"`
	MinRestHours       float64       `yaml:"min_rest_hours"`
	MaxConsecutiveDays int           `yaml:"max_consecutive_days"`
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load 从环境变量加载配置
// 存在 .env 文件时先行载入（本地开发用）。
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:     envString("APP_NAME", "chengwu"),
			Env:      envString("APP_ENV", "development"),
			Port:     envInt("APP_PORT", 7021),
			LogLevel: envString("APP_LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:            envString("DB_HOST", "localhost"),
			Port:            envInt("DB_PORT", 5432),
			Name:            envString("DB_NAME", "chengwu"),
			User:            envString("DB_USER", "chengwu"),
			Password:        envString("DB_PASSWORD", ""),
			SSLMode:         envString("DB_SSL_MODE", "disable"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Engine: EngineConfig{
			DefaultTimeout:     envDuration("ENGINE_DEFAULT_TIMEOUT", 60*time.Second),
			MaxShiftsPerDay:    envInt("ENGINE_MAX_SHIFTS_PER_DAY", 3),
			MinRestHours:       envFloat("ENGINE_MIN_REST_HOURS", 11),
			MaxConsecutiveDays: envInt("ENGINE_MAX_CONSECUTIVE_DAYS", 6),
		},
		Metrics: MetricsConfig{
			Enabled: envBool("METRICS_ENABLED", true),
			Path:    envString("METRICS_PATH", "/metrics"),
		},
	}

	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		return nil, fmt.Errorf("无效的端口配置: %d", cfg.App.Port)
	}
	return cfg, nil
}

// envString 读取字符串环境变量
func envString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// envInt 读取整数环境变量
func envInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

// envFloat 读取浮点数环境变量
func envFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// envBool 读取布尔环境变量
func envBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// envDuration 读取时长环境变量
func envDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
