// Package config loads leadscout settings from defaults, an optional YAML
// file and the environment.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/FranksOps/leadscout/internal/outreach"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. LEADSCOUT_SEARCH_MAX.
const EnvPrefix = "LEADSCOUT"

type Config struct {
	Log struct {
		Level       string `mapstructure:"level"`
		Development bool   `mapstructure:"development"`
	} `mapstructure:"log"`

	Search struct {
		Provider     string `mapstructure:"provider"`
		TavilyAPIKey string `mapstructure:"tavily_api_key"`
		BaseURL      string `mapstructure:"base_url"`
		Depth        string `mapstructure:"depth"`
		Max          int    `mapstructure:"max"`
		QuerySuffix  string `mapstructure:"query_suffix"`
		FixturePath  string `mapstructure:"fixture_path"`
	} `mapstructure:"search"`

	Scraper struct {
		Timeout      time.Duration `mapstructure:"timeout"`
		Fingerprint  string        `mapstructure:"fingerprint"`
		VerifyTLS    bool          `mapstructure:"verify_tls"`
		MaxPages     int           `mapstructure:"max_pages"`
		SiteTimeout  time.Duration `mapstructure:"site_timeout"`
		MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
		ContactPaths []string      `mapstructure:"contact_paths"`
		ProxyFile    string        `mapstructure:"proxy_file"`
	} `mapstructure:"scraper"`

	LLM struct {
		Provider    string        `mapstructure:"provider"`
		APIKey      string        `mapstructure:"api_key"`
		Model       string        `mapstructure:"model"`
		BaseURL     string        `mapstructure:"base_url"`
		Temperature float64       `mapstructure:"temperature"`
		Timeout     time.Duration `mapstructure:"timeout"`
	} `mapstructure:"llm"`

	Storage struct {
		Kind string `mapstructure:"kind"`
		DSN  string `mapstructure:"dsn"`
	} `mapstructure:"storage"`

	Outreach struct {
		Sender      outreach.Sender `mapstructure:"sender"`
		Samples     int             `mapstructure:"samples"`
		Temperature float64         `mapstructure:"temperature"`
	} `mapstructure:"outreach"`

	Metrics struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"metrics"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	// Keys need a default to be picked up from the environment by Unmarshal.
	v.SetDefault("search.provider", "tavily")
	v.SetDefault("search.tavily_api_key", "")
	v.SetDefault("search.base_url", "")
	v.SetDefault("search.query_suffix", "")
	v.SetDefault("search.fixture_path", "")
	v.SetDefault("search.depth", "basic")
	v.SetDefault("search.max", 10)

	v.SetDefault("scraper.timeout", 8*time.Second)
	v.SetDefault("scraper.fingerprint", "go")
	v.SetDefault("scraper.verify_tls", false)
	v.SetDefault("scraper.max_pages", 8)
	v.SetDefault("scraper.site_timeout", 0)
	v.SetDefault("scraper.max_body_bytes", 2<<20)
	v.SetDefault("scraper.proxy_file", "")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.timeout", 60*time.Second)

	v.SetDefault("storage.kind", "sqlite")
	v.SetDefault("storage.dsn", "leadscout.db")

	v.SetDefault("outreach.sender.company", "")
	v.SetDefault("outreach.sender.site", "")
	v.SetDefault("outreach.samples", outreach.DefaultSamples)
	v.SetDefault("outreach.temperature", 0.7)

	v.SetDefault("metrics.port", 0)
}

// Well known variables honored next to the LEADSCOUT_ ones.
var aliases = map[string][]string{
	"search.tavily_api_key": {"TAVILY_API_KEY"},
}

var providerKeys = map[string][]string{
	"openai": {"OPENAI_API_KEY"},
	"gemini": {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// Load reads configuration. An empty path searches for leadscout.yaml in the
// working directory and in $HOME/.config/leadscout; a missing file there is
// not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range aliases {
		args := append([]string{key, EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, eris.Wrapf(err, "config: bind %s", key)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("leadscout")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "leadscout"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: decode")
	}

	if cfg.LLM.APIKey == "" {
		for _, env := range providerKeys[strings.ToLower(cfg.LLM.Provider)] {
			if key := os.Getenv(env); key != "" {
				cfg.LLM.APIKey = key
				break
			}
		}
	}

	return &cfg, nil
}
