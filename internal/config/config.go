package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"aoqbot/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Bot        BotConfig        `yaml:"bot"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Hour        int    `yaml:"hour"`
	StoragePath string `yaml:"storage_path"`
	KeepLatest  int    `yaml:"keep_latest"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type BotConfig struct {
	// AdminID — привилегированный Telegram ID, которому роль admin
	// выставляется при каждом событии.
	AdminID             int64  `yaml:"admin_id"`
	Timezone            string `yaml:"timezone"`
	CooldownDays        int    `yaml:"cooldown_days"`
	NPSDelayMinutes     int    `yaml:"nps_delay_minutes"`
	BroadcastIntervalMs int    `yaml:"broadcast_interval_ms"`
	RateLimitMessages   int    `yaml:"rate_limit_messages"`
	RateLimitWindow     int    `yaml:"rate_limit_window"`
	PaginationSize      int    `yaml:"pagination_size"`
	StatsHour           int    `yaml:"stats_hour"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env не обязателен: в проде переменные приходят из окружения
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" || c.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		return errors.New("telegram bot token is required")
	}

	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Bot.AdminID == 0 {
		return errors.New("bot admin_id is required")
	}

	if _, err := time.LoadLocation(c.Bot.Timezone); err != nil {
		return fmt.Errorf("invalid bot timezone %q: %w", c.Bot.Timezone, err)
	}

	return nil
}

// Location возвращает уже провалидированную тайм-зону деплоймента.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Bot.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) applyDefaults() {
	if c.Bot.Timezone == "" {
		c.Bot.Timezone = "Europe/Moscow"
	}
	if c.Bot.CooldownDays == 0 {
		c.Bot.CooldownDays = models.DefaultCooldownDays
	}
	if c.Bot.NPSDelayMinutes == 0 {
		c.Bot.NPSDelayMinutes = models.DefaultNPSDelayMinutes
	}
	if c.Bot.BroadcastIntervalMs == 0 {
		c.Bot.BroadcastIntervalMs = models.DefaultBroadcastIntervalMs
	}
	if c.Bot.RateLimitMessages == 0 {
		c.Bot.RateLimitMessages = models.RateLimitMessages
	}
	if c.Bot.RateLimitWindow == 0 {
		c.Bot.RateLimitWindow = models.RateLimitWindow
	}
	if c.Bot.PaginationSize == 0 {
		c.Bot.PaginationSize = models.DefaultPaginationSize
	}
	if c.Bot.StatsHour == 0 {
		c.Bot.StatsHour = 12
	}
	if c.Backup.KeepLatest == 0 {
		c.Backup.KeepLatest = models.DefaultBackupKeepLatest
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "data/backups"
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "data/exports"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
}

// CooldownWindow — длительность окна повторной оценки.
func (c *Config) CooldownWindow() time.Duration {
	return time.Duration(c.Bot.CooldownDays) * 24 * time.Hour
}

// NPSDelay — задержка перед запросом NPS.
func (c *Config) NPSDelay() time.Duration {
	return time.Duration(c.Bot.NPSDelayMinutes) * time.Minute
}

// BroadcastInterval — пауза между отправками рассылки.
func (c *Config) BroadcastInterval() time.Duration {
	return time.Duration(c.Bot.BroadcastIntervalMs) * time.Millisecond
}
