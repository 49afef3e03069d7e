package capsulevault

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration for the SDK and the capsulectl tool.
// Values are merged in increasing precedence: defaults, the YAML config
// file, a .env file in the working directory, and CAPSULEVAULT_* process
// environment variables. The crypto engine never reads configuration; it
// only affects where the client sends requests and which wallet it acts as.
type Config struct {
	Network       string `yaml:"network"`
	LedgerURL     string `yaml:"ledger_url"`
	StoreURL      string `yaml:"store_url"`
	APIKey        string `yaml:"api_key"`
	WalletAddress string `yaml:"wallet_address"`
	OutputFormat  string `yaml:"output_format"`
	MaxFileSize   int64  `yaml:"max_file_size"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

// DefaultConfig returns the configuration used when nothing else is set.
func DefaultConfig() *Config {
	return &Config{
		Network:       "devnet",
		LedgerURL:     defaultLedgerURL,
		StoreURL:      defaultStoreURL,
		OutputFormat:  "human",
		MaxFileSize:   100 * 1024 * 1024,
		MaxConcurrent: 4,
	}
}

// LoadConfig loads configuration from the given YAML file path, then
// overlays .env and environment variables. An empty path falls back to
// $CAPSULEVAULT_CONFIG, then ~/.capsulevault/config.yaml, then
// ./capsulevault.yaml; a missing fallback file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = findDefaultConfig()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case explicit:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// .env is optional; ignore a missing file
	_ = godotenv.Load()

	cfg.applyEnv()
	return cfg, nil
}

func findDefaultConfig() string {
	if path := os.Getenv("CAPSULEVAULT_CONFIG"); path != "" {
		return path
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".capsulevault", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if _, err := os.Stat("capsulevault.yaml"); err == nil {
		return "capsulevault.yaml"
	}
	return ""
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CAPSULEVAULT_NETWORK"); v != "" {
		c.Network = v
	}
	if v := os.Getenv("CAPSULEVAULT_LEDGER_URL"); v != "" {
		c.LedgerURL = v
	}
	if v := os.Getenv("CAPSULEVAULT_STORE_URL"); v != "" {
		c.StoreURL = v
	}
	if v := os.Getenv("CAPSULEVAULT_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("CAPSULEVAULT_WALLET_ADDRESS"); v != "" {
		c.WalletAddress = v
	}
	if v := os.Getenv("CAPSULEVAULT_OUTPUT_FORMAT"); v != "" {
		c.OutputFormat = v
	}
	if v := os.Getenv("CAPSULEVAULT_MAX_FILE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.MaxFileSize = n
		}
	}
	if v := os.Getenv("CAPSULEVAULT_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxConcurrent = n
		}
	}
}
