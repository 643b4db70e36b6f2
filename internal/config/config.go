package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		Mode           string   `yaml:"mode"` // gin mode: debug, release, test
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Cache struct {
		CabinsTTLSeconds int `yaml:"cabins_ttl_seconds"`
	} `yaml:"cache"`

	Locking struct {
		Backend    string `yaml:"backend"` // "redis" or "local"
		TTLSeconds int    `yaml:"ttl_seconds"`
		WaitMillis int    `yaml:"wait_ms"`
	} `yaml:"locking"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`

	Booking struct {
		Timezone string `yaml:"timezone"`
		// CreateRateLimit limits public reservation requests per client IP, e.g. "10-M".
		CreateRateLimit string `yaml:"create_rate_limit"`
	} `yaml:"booking"`

	Telegram struct {
		BotToken     string  `yaml:"bot_token"`
		StaffChatIDs []int64 `yaml:"staff_chat_ids"`
		Debug        bool    `yaml:"debug"`
		// DigestHour is the club-local hour of the daily occupancy digest; negative disables it.
		DigestHour int `yaml:"digest_hour"`
	} `yaml:"telegram"`

	Sheets struct {
		Enabled         bool   `yaml:"enabled"`
		CredentialsFile string `yaml:"credentials_file"`
		SpreadsheetID   string `yaml:"spreadsheet_id"`
		SheetName       string `yaml:"sheet_name"`
		IntervalMinutes int    `yaml:"interval_minutes"`
	} `yaml:"sheets"`

	CabinsConfigPath string `yaml:"cabins_config_path"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/cabana.db"
	}
	if c.Locking.Backend == "" {
		c.Locking.Backend = "local"
	}
	if c.Booking.Timezone == "" {
		c.Booking.Timezone = "America/Sao_Paulo"
	}
	if c.Booking.CreateRateLimit == "" {
		c.Booking.CreateRateLimit = "10-M"
	}
	if c.Sheets.SheetName == "" {
		c.Sheets.SheetName = "Reservas"
	}
	if c.CabinsConfigPath == "" {
		c.CabinsConfigPath = "configs/cabins.yaml"
	}
}

// Location returns the club's local time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Booking.Timezone)
	if err != nil {
		return nil, fmt.Errorf("booking.timezone %q: %w", c.Booking.Timezone, err)
	}
	return loc, nil
}

func (c *Config) LockTTL() time.Duration {
	if c.Locking.TTLSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Locking.TTLSeconds) * time.Second
}

func (c *Config) LockWait() time.Duration {
	if c.Locking.WaitMillis <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.Locking.WaitMillis) * time.Millisecond
}

func (c *Config) CabinsCacheTTL() time.Duration {
	if c.Cache.CabinsTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Cache.CabinsTTLSeconds) * time.Second
}

func (c *Config) SheetsInterval() time.Duration {
	if c.Sheets.IntervalMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.Sheets.IntervalMinutes) * time.Minute
}

// LoadCabins loads cabins.yaml from CabinsConfigPath.
func (c *Config) LoadCabins() (*CabinsConfig, error) {
	return LoadCabinsConfig(c.CabinsConfigPath)
}
