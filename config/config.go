package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config describes the bridge token daemon.
type Config struct {
	ListenAddress   string `toml:"ListenAddress"`
	DataDir         string `toml:"DataDir"`
	Database        string `toml:"Database"`
	ContractAccount string `toml:"ContractAccount"`
	ProverEndpoint  string `toml:"ProverEndpoint"`
	ProverTimeout   string `toml:"ProverTimeout"`
	AuthSecret      string `toml:"AuthSecret"`

	RateLimitPerMinute float64 `toml:"RateLimitPerMinute"`
	RateLimitBurst     int     `toml:"RateLimitBurst"`

	LogFile       string `toml:"LogFile"`
	LogMaxSizeMB  int    `toml:"LogMaxSizeMB"`
	LogMaxBackups int    `toml:"LogMaxBackups"`
}

const defaultConfig = `# Bridge token daemon configuration.
ListenAddress = ":8547"
DataDir = "./bridge-data"
# Database backend: "leveldb", "bolt" or "memory".
Database = "leveldb"
# The ledger's own account identity. Mint completions run under this id.
ContractAccount = "bridge-token"
ProverEndpoint = "http://127.0.0.1:8548"
ProverTimeout = "30s"
# HS256 secret for caller identity tokens. Must be set before serving.
AuthSecret = ""
RateLimitPerMinute = 600
RateLimitBurst = 30
# Leave LogFile empty to log to stdout.
LogFile = ""
LogMaxSizeMB = 64
LogMaxBackups = 4
`

// Load reads the configuration from path, writing a commented default file
// first if none exists.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createDefault(path); err != nil {
			return nil, err
		}
	}
	cfg := &Config{}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config: unknown key %s in %s", undecoded[0], path)
	}
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func createDefault(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o600); err != nil {
		return fmt.Errorf("config: write default %s: %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		cfg.ListenAddress = ":8547"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./bridge-data"
	}
	if strings.TrimSpace(cfg.Database) == "" {
		cfg.Database = "leveldb"
	}
	if strings.TrimSpace(cfg.ProverTimeout) == "" {
		cfg.ProverTimeout = "30s"
	}
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = 600
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 30
	}
	if cfg.LogMaxSizeMB <= 0 {
		cfg.LogMaxSizeMB = 64
	}
	if cfg.LogMaxBackups < 0 {
		cfg.LogMaxBackups = 0
	}
}

func validate(cfg *Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Database)) {
	case "leveldb", "bolt", "memory":
	default:
		return fmt.Errorf("config: unsupported database backend %q", cfg.Database)
	}
	if strings.TrimSpace(cfg.ContractAccount) == "" {
		return fmt.Errorf("config: ContractAccount required")
	}
	if strings.TrimSpace(cfg.ProverEndpoint) == "" {
		return fmt.Errorf("config: ProverEndpoint required")
	}
	if _, err := cfg.ProverTimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// ProverTimeoutDuration parses the prover timeout setting.
func (c *Config) ProverTimeoutDuration() (time.Duration, error) {
	timeout, err := time.ParseDuration(strings.TrimSpace(c.ProverTimeout))
	if err != nil {
		return 0, fmt.Errorf("config: invalid ProverTimeout %q: %w", c.ProverTimeout, err)
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("config: ProverTimeout must be positive")
	}
	return timeout, nil
}
