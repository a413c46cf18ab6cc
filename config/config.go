package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port            string `yaml:"port,omitempty" json:"-"`
	DBPath          string `yaml:"db_path,omitempty" json:"-"`
	BaseURL         string `yaml:"base_url,omitempty" json:"baseUrl"`
	SessionSecret   string `yaml:"session_secret,omitempty" json:"-"`
	AdminUsername   string `yaml:"admin_username,omitempty" json:"-"`
	AdminPassword   string `yaml:"admin_password,omitempty" json:"-"`
	QRSize          int    `yaml:"qr_size,omitempty" json:"qrSize"`
	DefaultLocation string `yaml:"default_location,omitempty" json:"defaultLocation"`
	SeedCSV         string `yaml:"seed_csv,omitempty" json:"-"`
}

var (
	cfg  = Defaults()
	mu   sync.RWMutex
	path = "./inspectlog.yml"

	// fileCfg holds only what the file itself sets, without defaults or env overrides.
	fileCfg Config
)

// Defaults returns the settings used when no file or environment value is present.
func Defaults() Config {
	return Config{
		Port:            "3000",
		DBPath:          "./inspectlog.db",
		BaseURL:         "http://localhost:3000",
		SessionSecret:   "change-me-inspectlog-session-key",
		AdminUsername:   "admin",
		AdminPassword:   "password",
		QRSize:          256,
		DefaultLocation: "Unknown",
	}
}

// SetPath changes the file read by LoadConfig and written by SaveConfig.
func SetPath(p string) {
	mu.Lock()
	defer mu.Unlock()
	path = p
	fileCfg = Config{}
}

// LoadConfig reads the YAML file (missing file is not an error), then applies
// .env and INSPECTLOG_* environment overrides.
func LoadConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	loaded := Defaults()
	var raw Config
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		yaml.Unmarshal(data, &loaded)
	}

	_ = godotenv.Load() // .env is optional
	applyEnv(&loaded)
	fillDefaults(&loaded)

	fileCfg = raw
	cfg = loaded
	return cfg, nil
}

// SaveConfig makes newCfg current and writes its runtime-editable settings
// (base URL, QR size, default location) to the YAML file. Every other key in
// the file is kept as it was, so values from the environment never reach disk.
func SaveConfig(newCfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	fillDefaults(&newCfg)
	persisted := fileCfg
	persisted.BaseURL = newCfg.BaseURL
	persisted.QRSize = newCfg.QRSize
	persisted.DefaultLocation = newCfg.DefaultLocation

	data, err := yaml.Marshal(persisted)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}
	fileCfg = persisted
	cfg = newCfg
	return nil
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

func applyEnv(c *Config) {
	c.Port = getEnv("INSPECTLOG_PORT", c.Port)
	c.DBPath = getEnv("INSPECTLOG_DB_PATH", c.DBPath)
	c.BaseURL = getEnv("INSPECTLOG_BASE_URL", c.BaseURL)
	c.SessionSecret = getEnv("INSPECTLOG_SESSION_SECRET", c.SessionSecret)
	c.AdminUsername = getEnv("INSPECTLOG_ADMIN_USERNAME", c.AdminUsername)
	c.AdminPassword = getEnv("INSPECTLOG_ADMIN_PASSWORD", c.AdminPassword)
	c.DefaultLocation = getEnv("INSPECTLOG_DEFAULT_LOCATION", c.DefaultLocation)
	c.SeedCSV = getEnv("INSPECTLOG_SEED_CSV", c.SeedCSV)
	if v := os.Getenv("INSPECTLOG_QR_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.QRSize = n
		}
	}
}

func fillDefaults(c *Config) {
	def := Defaults()
	if c.Port == "" {
		c.Port = def.Port
	}
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.SessionSecret == "" {
		c.SessionSecret = def.SessionSecret
	}
	if c.AdminUsername == "" {
		c.AdminUsername = def.AdminUsername
	}
	if c.AdminPassword == "" {
		c.AdminPassword = def.AdminPassword
	}
	if c.QRSize <= 0 {
		c.QRSize = def.QRSize
	}
	if c.DefaultLocation == "" {
		c.DefaultLocation = def.DefaultLocation
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
