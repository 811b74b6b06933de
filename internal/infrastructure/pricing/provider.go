package pricing

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/deviceorder/fulfillment-service/internal/domain"
	"github.com/deviceorder/fulfillment-service/pkg/logging"
)

// StaticProvider serves a fixed pricing configuration
type StaticProvider struct {
	config domain.PricingConfig
}

// NewStaticProvider creates a provider that always returns cfg
func NewStaticProvider(cfg domain.PricingConfig) (*StaticProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pricing config: %w", err)
	}
	return &StaticProvider{config: cfg}, nil
}

// Current returns the pricing configuration
func (p *StaticProvider) Current() domain.PricingConfig {
	return p.config
}

// FileProvider loads pricing configuration from a YAML file and reloads
// it periodically. A reload that fails validation keeps the previous
// config in effect.
type FileProvider struct {
	path   string
	logger *logging.Logger

	mu      sync.RWMutex
	config  domain.PricingConfig
	modTime time.Time
}

// NewFileProvider loads the initial configuration from path
func NewFileProvider(path string, logger *logging.Logger) (*FileProvider, error) {
	p := &FileProvider{
		path:   path,
		logger: logger.WithComponent("pricing"),
	}

	if err := p.reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Current returns the pricing configuration currently in effect
func (p *FileProvider) Current() domain.PricingConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config
}

// Watch polls the file for changes until ctx is cancelled
func (p *FileProvider) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.reloadIfChanged(); err != nil {
				p.logger.WithError(err).Warn("Pricing config reload failed, keeping previous config")
			}
		}
	}
}

func (p *FileProvider) reloadIfChanged() error {
	info, err := os.Stat(p.path)
	if err != nil {
		return fmt.Errorf("failed to stat pricing config: %w", err)
	}

	p.mu.RLock()
	unchanged := info.ModTime().Equal(p.modTime)
	p.mu.RUnlock()

	if unchanged {
		return nil
	}
	return p.reload()
}

func (p *FileProvider) reload() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("failed to read pricing config: %w", err)
	}

	var cfg domain.PricingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse pricing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid pricing config: %w", err)
	}

	info, err := os.Stat(p.path)
	if err != nil {
		return fmt.Errorf("failed to stat pricing config: %w", err)
	}

	p.mu.Lock()
	p.config = cfg
	p.modTime = info.ModTime()
	p.mu.Unlock()

	p.logger.WithFields(map[string]any{
		"unit_price":     cfg.UnitPrice,
		"discount_tiers": len(cfg.DiscountTiers),
	}).Info("Pricing config loaded")

	return nil
}
