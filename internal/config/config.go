package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
	// LocalOnly rejects requests from non-loopback addresses.
	LocalOnly bool `mapstructure:"local_only"`
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"` // sqlite / postgres
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
	LogMode bool   `mapstructure:"log_mode"`
}

type SecurityConfig struct {
	EncryptionKey string `mapstructure:"encryption_key"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

type BackupConfig struct {
	Dir string `mapstructure:"dir"`
}

// LedgerConfig holds the product limits of the ledger core.
type LedgerConfig struct {
	MaxCustomAccounts   int           `mapstructure:"max_custom_accounts"`
	MaxCustomCategories int           `mapstructure:"max_custom_categories"`
	DefaultCurrency     string        `mapstructure:"default_currency"`
	ExpirySweep         string        `mapstructure:"expiry_sweep"` // cron spec
	ReminderLead        time.Duration `mapstructure:"reminder_lead"`
}

type RatesConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Rates    RatesConfig    `mapstructure:"rates"`
}

var (
	appConfig *Config
	once      sync.Once
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.local_only", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/ledger.db")
	v.SetDefault("database.log_mode", false)
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.level", "warn")
	v.SetDefault("backup.dir", "backups")
	v.SetDefault("ledger.max_custom_accounts", 5)
	v.SetDefault("ledger.max_custom_categories", 10)
	v.SetDefault("ledger.default_currency", "MGA")
	v.SetDefault("ledger.expiry_sweep", "@every 15m")
	v.SetDefault("ledger.reminder_lead", 24*time.Hour)
	v.SetDefault("rates.base_url", "https://open.er-api.com/v6/latest/")
	v.SetDefault("rates.ttl", time.Hour)
}

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it looks for "config.yaml" in the current working directory
// and falls back to defaults when none is found.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		appConfig, err = load(path)
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

func load(path string) (*Config, error) {
	// .env is optional; real environment variables always win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. MT_SERVER_PORT=9000
	v.SetEnvPrefix("MT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("config: database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("config: database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	if c.Ledger.MaxCustomAccounts < 0 || c.Ledger.MaxCustomCategories < 0 {
		return errors.New("config: ledger limits must not be negative")
	}
	if c.Ledger.ReminderLead < 0 {
		return errors.New("config: ledger.reminder_lead must not be negative")
	}
	return nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
