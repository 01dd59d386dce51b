// Package config loads service settings from an optional config file,
// a .env file and NEWS_AGENT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"ai_news_agent/generator"
)

const envPrefix = "NEWS_AGENT"

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Generation GenerationConfig `mapstructure:"generation"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// RateLimitRPM caps accepted generate requests per minute; 0 disables it.
	RateLimitRPM int `mapstructure:"rate_limit_rpm"`
}

// LLMConfig selects and authenticates the model provider.
type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
}

// GenerationConfig holds the per-call generation parameters.
type GenerationConfig struct {
	Temperature      float64       `mapstructure:"temperature"`
	MaxTokens        int64         `mapstructure:"max_tokens"`
	TopP             float64       `mapstructure:"top_p"`
	FrequencyPenalty float64       `mapstructure:"frequency_penalty"`
	PresencePenalty  float64       `mapstructure:"presence_penalty"`
	Seed             int64         `mapstructure:"seed"`
	Timeout          time.Duration `mapstructure:"timeout"`
	JSONMode         bool          `mapstructure:"json_mode"`
}

// PipelineConfig holds pipeline shape settings.
type PipelineConfig struct {
	EditorMode string `mapstructure:"editor_mode"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration. An empty path searches ./config and the working
// directory for config.{json,yaml,...} and tolerates its absence; an explicit
// path must exist.
func Load(path string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyProviderKey()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit_rpm", 0)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")

	def := generator.DefaultOptions()
	v.SetDefault("generation.temperature", def.Temperature)
	v.SetDefault("generation.max_tokens", def.MaxTokens)
	v.SetDefault("generation.top_p", def.TopP)
	v.SetDefault("generation.frequency_penalty", def.FrequencyPenalty)
	v.SetDefault("generation.presence_penalty", def.PresencePenalty)
	v.SetDefault("generation.seed", def.Seed)
	v.SetDefault("generation.timeout", def.Timeout)
	v.SetDefault("generation.json_mode", def.JSON)

	v.SetDefault("pipeline.editor_mode", string(generator.EditorJSON))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// applyProviderKey falls back to the provider's conventional key variable.
func (c *Config) applyProviderKey() {
	if c.LLM.APIKey != "" {
		return
	}
	switch c.LLM.Provider {
	case "openai", "deepseek":
		c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		c.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
}

// Validate checks values that would otherwise fail late, mid-request.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "deepseek", "anthropic", "mock":
	default:
		return fmt.Errorf("llm provider %s not supported", c.LLM.Provider)
	}
	if _, err := generator.ParseEditorMode(c.Pipeline.EditorMode); err != nil {
		return err
	}
	if c.Generation.Timeout < 0 {
		return fmt.Errorf("generation.timeout must not be negative")
	}
	if c.Generation.MaxTokens < 0 {
		return fmt.Errorf("generation.max_tokens must not be negative")
	}
	if c.Server.RateLimitRPM < 0 {
		return fmt.Errorf("server.rate_limit_rpm must not be negative")
	}
	return nil
}

// Options converts the generation section into pipeline options.
func (c *Config) Options() generator.Options {
	g := c.Generation
	return generator.Options{
		Temperature:      g.Temperature,
		MaxTokens:        g.MaxTokens,
		TopP:             g.TopP,
		FrequencyPenalty: g.FrequencyPenalty,
		PresencePenalty:  g.PresencePenalty,
		Seed:             g.Seed,
		Timeout:          g.Timeout,
		JSON:             g.JSONMode,
	}
}

// LLMSettings converts the llm section into client settings.
func (c *Config) LLMSettings() *generator.LLMSettings {
	return &generator.LLMSettings{
		Provider: c.LLM.Provider,
		Model:    c.LLM.Model,
		APIKey:   c.LLM.APIKey,
		BaseURL:  c.LLM.BaseURL,
	}
}
