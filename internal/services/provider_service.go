package services

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"vitalis/internal/config"
	"vitalis/internal/models"

	cache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// ProviderService resolves completion providers and model aliases from
// providers.json. It is hot-reloadable: the file watcher in main calls
// Reload on change.
type ProviderService struct {
	mu        sync.RWMutex
	config    *models.ProvidersConfig
	limiters  map[string]*rate.Limiter
	aliasCache *cache.Cache
}

// ResolvedModel is a concrete provider plus model ID ready for a completion call
type ResolvedModel struct {
	Provider models.Provider
	Model    string
	APIKey   string
}

// NewProviderService loads providers.json and builds per-provider rate limiters
func NewProviderService(filePath string) (*ProviderService, error) {
	cfg, err := config.LoadProviders(filePath)
	if err != nil {
		return nil, err
	}

	s := &ProviderService{
		aliasCache: cache.New(10*time.Minute, 30*time.Minute),
	}
	if err := s.apply(cfg); err != nil {
		return nil, err
	}

	log.Printf("✅ Loaded %d completion providers (default: %s)", len(cfg.Providers), cfg.Default)
	return s, nil
}

// Reload re-reads providers.json and swaps the active configuration
func (s *ProviderService) Reload(filePath string) error {
	cfg, err := config.LoadProviders(filePath)
	if err != nil {
		return err
	}
	if err := s.apply(cfg); err != nil {
		return err
	}

	s.aliasCache.Flush()
	log.Printf("🔄 Reloaded %d completion providers (default: %s)", len(cfg.Providers), cfg.Default)
	return nil
}

func (s *ProviderService) apply(cfg *models.ProvidersConfig) error {
	if len(cfg.Providers) == 0 {
		return fmt.Errorf("providers file contains no providers")
	}

	found := false
	limiters := make(map[string]*rate.Limiter, len(cfg.Providers))
	for _, p := range cfg.Providers {
		if p.Name == cfg.Default {
			found = true
		}
		rpm := p.RequestsPerMinute
		if rpm <= 0 {
			rpm = 60
		}
		limiters[p.Name] = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm)
	}
	if !found {
		return fmt.Errorf("default provider %q not present in providers list", cfg.Default)
	}

	s.mu.Lock()
	s.config = cfg
	s.limiters = limiters
	s.mu.Unlock()
	return nil
}

// Resolve maps a model name (possibly an alias, possibly empty for the
// default) to a concrete provider, model ID, and API key.
func (s *ProviderService) Resolve(model string) (*ResolvedModel, error) {
	cacheKey := "resolve:" + model
	if cached, ok := s.aliasCache.Get(cacheKey); ok {
		resolved := cached.(ResolvedModel)
		return &resolved, nil
	}

	s.mu.RLock()
	cfg := s.config
	s.mu.RUnlock()

	var provider *models.Provider
	concrete := model
	for i := range cfg.Providers {
		p := &cfg.Providers[i]
		if model == "" {
			if p.Name == cfg.Default {
				provider = p
				concrete = p.DefaultModel
				break
			}
			continue
		}
		if p.DefaultModel == model {
			provider = p
			break
		}
		if target, ok := p.Aliases[model]; ok {
			provider = p
			concrete = target
			break
		}
	}
	if provider == nil {
		return nil, fmt.Errorf("no provider serves model %q", model)
	}

	apiKey := os.Getenv(provider.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("provider %s: API key env %s is not set", provider.Name, provider.APIKeyEnv)
	}

	resolved := ResolvedModel{
		Provider: *provider,
		Model:    concrete,
		APIKey:   apiKey,
	}
	s.aliasCache.Set(cacheKey, resolved, cache.DefaultExpiration)
	return &resolved, nil
}

// Limiter returns the rate limiter for a provider
func (s *ProviderService) Limiter(providerName string) *rate.Limiter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limiters[providerName]
}
