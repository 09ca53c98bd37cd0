package categorize

import (
	"context"
	"regexp"

	"spendlens/internal/models"
)

// KeywordRule maps a case-insensitive pattern to a category.
type KeywordRule struct {
	Category models.Category
	Pattern  *regexp.Regexp
}

// Rule compiles a case-insensitive keyword rule. It panics on a bad pattern,
// so it is meant for package-level tables.
func Rule(cat models.Category, pattern string) KeywordRule {
	return KeywordRule{Category: cat, Pattern: regexp.MustCompile(`(?i)` + pattern)}
}

// DefaultKeywordRules is evaluated top to bottom; the first match wins.
// Patterns match substrings, so "coffeeshop" still hits "coffee".
var DefaultKeywordRules = []KeywordRule{
	Rule(models.CategoryFoodDining, `restaurant|food|lunch|dinner|breakfast|cafe|coffee|pizza|burger|subway|mcdonald|kfc|starbucks|eat|meal|snack|grocery|supermarket|market`),
	Rule(models.CategoryTransport, `gas|fuel|petrol|uber|taxi|bus|train|metro|flight|airline|car|vehicle|parking|toll|transport`),
	Rule(models.CategoryShopping, `amazon|shop|store|mall|clothes|shirt|pants|shoes|electronics|phone|laptop|book|gift|purchase|buy`),
	Rule(models.CategoryBills, `bill|electricity|water|gas|internet|phone|rent|mortgage|utility|payment|subscription|netflix|spotify|prime`),
	Rule(models.CategoryEntertainment, `movie|cinema|theater|game|entertainment|fun|party|concert|show|ticket|sport|gym|fitness`),
	Rule(models.CategoryHealthcare, `doctor|hospital|pharmacy|medicine|medical|health|dental|clinic|therapy|prescription`),
	Rule(models.CategoryEducation, `school|university|college|course|book|education|tuition|student|learning|class`),
	Rule(models.CategoryIncome, `salary|income|paycheck|bonus|refund|cashback|earnings|work|job|freelance`),
	Rule(models.CategoryTravel, `hotel|vacation|travel|trip|holiday|flight|booking|airbnb|hostel`),
}

// KeywordStrategy is the offline last step. It never fails.
type KeywordStrategy struct {
	rules []KeywordRule
}

// NewKeywordStrategy builds a keyword step over the given table.
func NewKeywordStrategy(rules []KeywordRule) *KeywordStrategy {
	return &KeywordStrategy{rules: rules}
}

func (s *KeywordStrategy) Name() string { return "keyword" }

func (s *KeywordStrategy) Categorize(_ context.Context, description string) (models.Category, error) {
	return s.Match(description), nil
}

// Match returns the first matching rule's category, or Other.
func (s *KeywordStrategy) Match(description string) models.Category {
	for _, r := range s.rules {
		if r.Pattern.MatchString(description) {
			return r.Category
		}
	}
	return models.CategoryOther
}

// KeywordCategory runs the default keyword table.
func KeywordCategory(description string) models.Category {
	return defaultKeywords.Match(description)
}

var defaultKeywords = NewKeywordStrategy(DefaultKeywordRules)
