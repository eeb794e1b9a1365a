package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Agent     AgentConfig     `json:"agent"`
	Providers ProvidersConfig `json:"providers"`
	Search    SearchConfig    `json:"search"`
	Analysis  AnalysisConfig  `json:"analysis"`
	Gateway   GatewayConfig   `json:"gateway"`
	Monitor   MonitorConfig   `json:"monitor"`
	Log       LogConfig       `json:"log"`
	mu        sync.RWMutex
}

type AgentConfig struct {
	Provider       string  `json:"provider" env:"BIZAGENT_AGENT_PROVIDER"`
	Model          string  `json:"model" env:"BIZAGENT_AGENT_MODEL"`
	MaxTokens      int     `json:"max_tokens" env:"BIZAGENT_AGENT_MAX_TOKENS"`
	Temperature    float64 `json:"temperature" env:"BIZAGENT_AGENT_TEMPERATURE"`
	MemoryLimit    int     `json:"memory_limit" env:"BIZAGENT_AGENT_MEMORY_LIMIT"`
	TimeoutSeconds int     `json:"timeout_seconds" env:"BIZAGENT_AGENT_TIMEOUT_SECONDS"`
}

type ProvidersConfig struct {
	Gemini GeminiConfig `json:"gemini"`
	OpenAI OpenAIConfig `json:"openai"`
}

type GeminiConfig struct {
	APIKey  string `json:"api_key" env:"BIZAGENT_PROVIDERS_GEMINI_API_KEY"`
	APIBase string `json:"api_base" env:"BIZAGENT_PROVIDERS_GEMINI_API_BASE"`
	Model   string `json:"model" env:"BIZAGENT_PROVIDERS_GEMINI_MODEL"`
}

type OpenAIConfig struct {
	APIKey string `json:"api_key" env:"BIZAGENT_PROVIDERS_OPENAI_API_KEY"`
	Model  string `json:"model" env:"BIZAGENT_PROVIDERS_OPENAI_MODEL"`
}

type SearchConfig struct {
	Endpoint       string `json:"endpoint" env:"BIZAGENT_SEARCH_ENDPOINT"`
	APIKey         string `json:"api_key" env:"BIZAGENT_SEARCH_API_KEY"`
	TimeoutSeconds int    `json:"timeout_seconds" env:"BIZAGENT_SEARCH_TIMEOUT_SECONDS"`
	MaxRetries     int    `json:"max_retries" env:"BIZAGENT_SEARCH_MAX_RETRIES"`
}

// AnalysisConfig holds the tunable heuristics used by the analytical tools.
// Defaults match the values the business has been operating with.
type AnalysisConfig struct {
	SalesWindowMonths  int    `json:"sales_window_months" env:"BIZAGENT_ANALYSIS_SALES_WINDOW_MONTHS"`
	AdequateStockSlots int    `json:"adequate_stock_slots" env:"BIZAGENT_ANALYSIS_ADEQUATE_STOCK_SLOTS"`
	DefaultMinAlert    int    `json:"default_min_alert" env:"BIZAGENT_ANALYSIS_DEFAULT_MIN_ALERT"`
	SearchQualifier    string `json:"search_qualifier" env:"BIZAGENT_ANALYSIS_SEARCH_QUALIFIER"`
}

type GatewayConfig struct {
	Host            string `json:"host" env:"BIZAGENT_GATEWAY_HOST"`
	Port            int    `json:"port" env:"BIZAGENT_GATEWAY_PORT"`
	AllowAllOrigins bool   `json:"allow_all_origins" env:"BIZAGENT_GATEWAY_ALLOW_ALL_ORIGINS"`
}

type MonitorConfig struct {
	Enabled  bool   `json:"enabled" env:"BIZAGENT_MONITOR_ENABLED"`
	Schedule string `json:"schedule" env:"BIZAGENT_MONITOR_SCHEDULE"`
}

type LogConfig struct {
	Level  string `json:"level" env:"BIZAGENT_LOG_LEVEL"`
	Format string `json:"format" env:"BIZAGENT_LOG_FORMAT"`
}

func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Provider:       "gemini",
			MaxTokens:      4096,
			Temperature:    0.4,
			MemoryLimit:    50,
			TimeoutSeconds: 60,
		},
		Providers: ProvidersConfig{
			Gemini: GeminiConfig{
				APIBase: "https://generativelanguage.googleapis.com/v1beta/models",
				Model:   "gemini-1.5-flash",
			},
			OpenAI: OpenAIConfig{
				Model: "gpt-4o-mini",
			},
		},
		Search: SearchConfig{
			Endpoint:       "https://google.serper.dev/search",
			TimeoutSeconds: 15,
			MaxRetries:     1,
		},
		Analysis: AnalysisConfig{
			SalesWindowMonths:  3,
			AdequateStockSlots: 20,
			DefaultMinAlert:    5,
			SearchQualifier:    "competitors pricing Indian market boat yacht marine industry",
		},
		Gateway: GatewayConfig{
			Host: "0.0.0.0",
			Port: 18850,
		},
		Monitor: MonitorConfig{
			Enabled:  false,
			Schedule: "0 8 * * *",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file is fine; env overrides still apply.
			if envErr := env.Parse(cfg); envErr != nil {
				return nil, envErr
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

func (c *Config) ActiveProvider() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name := strings.ToLower(strings.TrimSpace(c.Agent.Provider))
	if name == "" {
		return "gemini"
	}
	return name
}

func (c *Config) GeminiAPIBase() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Providers.Gemini.APIBase != "" {
		return strings.TrimRight(c.Providers.Gemini.APIBase, "/")
	}
	return "https://generativelanguage.googleapis.com/v1beta/models"
}
