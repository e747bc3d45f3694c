package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the guide service
type Config struct {
	General GeneralConfig `mapstructure:"general"`
	Server  ServerConfig  `mapstructure:"server"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Search  SearchConfig  `mapstructure:"search"`
	Export  ExportConfig  `mapstructure:"export"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug             bool          `mapstructure:"debug"`
	LogLevel          string        `mapstructure:"log_level"`
	DefaultLanguage   string        `mapstructure:"default_language"`
	MaxProcessingTime time.Duration `mapstructure:"max_processing_time"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
	// BaseURL is the externally reachable prefix used to build document URLs,
	// e.g. "" (same origin) or "https://langnerd.example.com".
	BaseURL string `mapstructure:"base_url"`
}

// LLMConfig contains reasoning backend settings
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // openai
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
}

func (l LLMConfig) Validate() error {
	if strings.TrimSpace(l.APIKey) == "" {
		return fmt.Errorf("llm.api_key is required (LANGNERD_LLM_API_KEY)")
	}
	if strings.TrimSpace(l.Model) == "" {
		return fmt.Errorf("llm.model is required")
	}
	return nil
}

// SearchConfig contains web search settings
type SearchConfig struct {
	Provider      string        `mapstructure:"provider"` // serper, brave, tavily
	APIKey        string        `mapstructure:"api_key"`
	Language      string        `mapstructure:"language"`
	Country       string        `mapstructure:"country"`
	MaxQueries    int           `mapstructure:"max_queries"`
	PerQuery      int           `mapstructure:"per_query"`
	MaxSources    int           `mapstructure:"max_sources"`
	ContextBudget int           `mapstructure:"context_budget"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	RateBurst     int           `mapstructure:"rate_burst"`
}

func (s SearchConfig) Validate() error {
	if strings.TrimSpace(s.APIKey) == "" {
		return fmt.Errorf("search.api_key is required (LANGNERD_SEARCH_API_KEY)")
	}
	if strings.TrimSpace(s.Provider) == "" {
		return fmt.Errorf("search.provider is required")
	}
	return nil
}

// ExportConfig contains document export settings
type ExportConfig struct {
	OutputDir  string `mapstructure:"output_dir"`
	PublicPath string `mapstructure:"public_path"`
}

func (e ExportConfig) Validate() error {
	if strings.TrimSpace(e.OutputDir) == "" {
		return fmt.Errorf("export.output_dir is required")
	}
	return nil
}

// LoadConfig loads config from file; env vars (LANGNERD_*) override.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.SetDefault("general.debug", false)
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.default_language", "it")
	viper.SetDefault("general.max_processing_time", "3m")
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.max_tokens", 4096)
	viper.SetDefault("llm.timeout", "90s")
	viper.SetDefault("llm.max_retries", 2)
	viper.SetDefault("search.provider", "serper")
	viper.SetDefault("search.language", "it")
	viper.SetDefault("search.country", "it")
	viper.SetDefault("search.max_queries", 4)
	viper.SetDefault("search.per_query", 6)
	viper.SetDefault("search.max_sources", 6)
	viper.SetDefault("search.context_budget", 12000)
	viper.SetDefault("search.timeout", "15s")
	viper.SetDefault("search.rate_per_second", 5.0)
	viper.SetDefault("search.rate_burst", 5)
	viper.SetDefault("export.output_dir", "./generated")
	viper.SetDefault("export.public_path", "/generated")

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("LANGNERD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional: defaults plus env vars are a complete
		// configuration. An explicitly requested file must exist.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || path != "" {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	return &config
}
