package providers

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vyaaparik/bizagent/pkg/config"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type providerFactory struct {
	build    func(cfg *config.Config) (TextProvider, error)
	validate func(cfg *config.Config) error
}

var (
	factoryMu sync.RWMutex
	factories = map[string]providerFactory{}
)

func init() {
	RegisterFactory(ProviderGemini,
		func(cfg *config.Config) (TextProvider, error) {
			timeout := time.Duration(cfg.Agent.TimeoutSeconds) * time.Second
			return NewGeminiProvider(cfg.Providers.Gemini.APIKey, cfg.GeminiAPIBase(), cfg.Providers.Gemini.Model, timeout)
		},
		func(cfg *config.Config) error {
			if strings.TrimSpace(cfg.Providers.Gemini.APIKey) == "" {
				return fmt.Errorf("gemini API key not configured")
			}
			return nil
		})

	RegisterFactory(ProviderOpenAI,
		func(cfg *config.Config) (TextProvider, error) {
			return NewOpenAIProvider(cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.Model)
		},
		func(cfg *config.Config) error {
			if strings.TrimSpace(cfg.Providers.OpenAI.APIKey) == "" {
				return fmt.Errorf("openai API key not configured")
			}
			return nil
		})
}

func RegisterFactory(name string, build func(cfg *config.Config) (TextProvider, error), validate func(cfg *config.Config) error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || build == nil {
		return
	}
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factories[name] = providerFactory{build: build, validate: validate}
}

func SupportedProviders() []string {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ValidateProviderConfig(cfg *config.Config) error {
	factory, _, err := getFactory(cfg)
	if err != nil {
		return err
	}
	if factory.validate == nil {
		return nil
	}
	return factory.validate(cfg)
}

func CreateProvider(cfg *config.Config) (TextProvider, error) {
	factory, name, err := getFactory(cfg)
	if err != nil {
		return nil, err
	}
	provider, err := factory.build(cfg)
	if err != nil {
		return nil, fmt.Errorf("build %s provider: %w", name, err)
	}
	return provider, nil
}

func getFactory(cfg *config.Config) (providerFactory, string, error) {
	name := cfg.ActiveProvider()
	factoryMu.RLock()
	factory, ok := factories[name]
	factoryMu.RUnlock()
	if !ok {
		return providerFactory{}, name, fmt.Errorf("unsupported provider %q: supported providers are %s", name, strings.Join(SupportedProviders(), ", "))
	}
	return factory, name, nil
}
