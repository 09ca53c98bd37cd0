package categorize

import (
	"context"
	"fmt"
	"strings"

	"spendlens/internal/ai"
	"spendlens/internal/models"
)

// GeneratorStrategy asks a generative model to pick from the closed list.
type GeneratorStrategy struct {
	gen ai.TextGenerator
}

// NewGeneratorStrategy wraps a text generator as a chain step.
func NewGeneratorStrategy(gen ai.TextGenerator) *GeneratorStrategy {
	return &GeneratorStrategy{gen: gen}
}

func (s *GeneratorStrategy) Name() string { return s.gen.Name() }

func (s *GeneratorStrategy) Categorize(ctx context.Context, description string) (models.Category, error) {
	out, err := s.gen.Generate(ctx, categoryPrompt(description))
	if err != nil {
		return "", err
	}
	// Exact, case-sensitive match only.
	cat := models.Category(strings.TrimSpace(out))
	if !cat.IsValid() {
		return "", ErrNoMatch
	}
	return cat, nil
}

func categoryPrompt(description string) string {
	return fmt.Sprintf(`Categorize this expense description into one of these categories:
%s

Expense: %q

Respond with only the category name, nothing else.`,
		strings.Join(models.CategoryLabels(), ", "), description)
}

// ZeroShotStrategy ranks the category labels with a zero-shot classifier and
// takes the best one.
type ZeroShotStrategy struct {
	cls ai.Classifier
}

// NewZeroShotStrategy wraps a classifier as a chain step.
func NewZeroShotStrategy(cls ai.Classifier) *ZeroShotStrategy {
	return &ZeroShotStrategy{cls: cls}
}

func (s *ZeroShotStrategy) Name() string { return s.cls.Name() }

func (s *ZeroShotStrategy) Categorize(ctx context.Context, description string) (models.Category, error) {
	labels, err := s.cls.Classify(ctx, description, models.CategoryLabels())
	if err != nil {
		return "", err
	}
	if len(labels) == 0 {
		return "", ErrNoMatch
	}
	cat, ok := models.ParseCategory(labels[0].Name)
	if !ok {
		return "", ErrNoMatch
	}
	return cat, nil
}
