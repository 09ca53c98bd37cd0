// Package categorize maps free-text expense descriptions to a category and
// pulls structured fields (amount, date, merchant) out of free text.
package categorize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"spendlens/internal/ai"
	"spendlens/internal/models"
)

// ErrNoMatch is returned by a strategy that answered but could not map the
// description to a known category.
var ErrNoMatch = errors.New("no category match")

// DefaultTimeout bounds a single provider-backed strategy.
const DefaultTimeout = 10 * time.Second

// Strategy is one step of the categorization chain. Any non-nil error means
// "try the next step".
type Strategy interface {
	Name() string
	Categorize(ctx context.Context, description string) (models.Category, error)
}

// Config selects the providers used by the chain. Nil providers are left out.
type Config struct {
	Generator  ai.TextGenerator
	Classifier ai.Classifier
	Timeout    time.Duration
	Keywords   []KeywordRule // nil uses DefaultKeywordRules
}

// Categorizer tries its strategies in order and always resolves to a
// category.
type Categorizer struct {
	strategies []Strategy
	timeout    time.Duration
	log        *zap.SugaredLogger
}

// New builds the standard chain: generative model, zero-shot classifier,
// keyword table.
func New(cfg Config, log *zap.SugaredLogger) *Categorizer {
	var chain []Strategy
	if cfg.Generator != nil {
		chain = append(chain, NewGeneratorStrategy(cfg.Generator))
	}
	if cfg.Classifier != nil {
		chain = append(chain, NewZeroShotStrategy(cfg.Classifier))
	}
	rules := cfg.Keywords
	if rules == nil {
		rules = DefaultKeywordRules
	}
	chain = append(chain, NewKeywordStrategy(rules))
	return NewChain(cfg.Timeout, log, chain...)
}

// NewChain builds a categorizer over an explicit strategy list.
func NewChain(timeout time.Duration, log *zap.SugaredLogger, strategies ...Strategy) *Categorizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Categorizer{strategies: strategies, timeout: timeout, log: log}
}

// Strategies returns the names of the configured steps, in order.
func (c *Categorizer) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Categorize returns the first category produced by the chain, or Other when
// every step declines.
func (c *Categorizer) Categorize(ctx context.Context, description string) models.Category {
	description = strings.TrimSpace(description)
	if description == "" {
		return models.CategoryOther
	}

	for _, s := range c.strategies {
		cat, err := c.run(ctx, s, description)
		if err == nil {
			return cat
		}
		if !errors.Is(err, ErrNoMatch) {
			c.log.Warnw("provider call failed", "step", "categorize", "provider", s.Name(), "error", err)
		}
	}
	return models.CategoryOther
}

func (c *Categorizer) run(ctx context.Context, s Strategy, description string) (cat models.Category, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy %s panicked: %v", s.Name(), r)
		}
	}()

	cat, err = s.Categorize(ctx, description)
	if err != nil {
		return "", err
	}
	if !cat.IsValid() {
		return "", ErrNoMatch
	}
	return cat, nil
}
