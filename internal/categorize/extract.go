package categorize

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PartialExpense is what can be recovered from a free-text note. Nil fields
// were not found; the caller supplies defaults.
type PartialExpense struct {
	Amount      *decimal.Decimal `json:"amount"`
	Date        *time.Time       `json:"date"`
	Merchant    *string          `json:"merchant"`
	Description string           `json:"description"`
}

// MerchantRule maps a pattern to a canonical merchant name.
type MerchantRule struct {
	Name    string
	Group   string
	Pattern *regexp.Regexp
}

func merchant(name, group, pattern string) MerchantRule {
	return MerchantRule{Name: name, Group: group, Pattern: regexp.MustCompile(`(?i)` + pattern)}
}

// DefaultMerchantRules is evaluated top to bottom; the first match wins.
var DefaultMerchantRules = []MerchantRule{
	merchant("mcdonald's", "food", `mcdonald|\bmcd\b`),
	merchant("starbucks", "food", `starbucks|\bsbux\b`),
	merchant("subway", "food", `subway`),
	merchant("kfc", "food", `\bkfc\b|kentucky fried chicken`),
	merchant("pizza hut", "food", `pizza hut`),
	merchant("domino's", "food", `domino`),

	merchant("amazon", "retail", `amazon`),
	merchant("walmart", "retail", `walmart|wal-mart`),
	merchant("target", "retail", `\btarget\b`),
	merchant("costco", "retail", `costco`),

	merchant("uber", "services", `\buber`),
	merchant("lyft", "services", `lyft`),
	merchant("netflix", "services", `netflix`),
	merchant("spotify", "services", `spotify`),
	merchant("google", "services", `\bgoogle\b`),
	merchant("apple", "services", `\bapple\b|app store`),

	merchant("shell", "fuel", `\bshell\b`),
	merchant("exxon", "fuel", `exxon`),
	merchant("bp", "fuel", `\bbp\b|british petroleum`),
	merchant("chevron", "fuel", `chevron`),

	merchant("chase", "banking", `\bchase\b`),
	merchant("bank of america", "banking", `bank of america|\bboa\b`),
	merchant("wells fargo", "banking", `wells fargo`),
}

// amountNumber accepts comma thousands separators ("1,299.99") and any
// number of decimals; extra decimals are rounded to cents.
const amountNumber = `((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?)`

// DefaultAmountPatterns are tried in order; the first capture group is the amount.
var DefaultAmountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:\$|₹|€|£|\brs\.?)\s?` + amountNumber),
	regexp.MustCompile(amountNumber + `\s?(?:\$|₹|€|£)`),
	regexp.MustCompile(`(?i)` + amountNumber + `\s*(?:dollars?|usd|rupees?|inr|euros?|eur)\b`),
	regexp.MustCompile(`\b` + amountNumber + `\b`),
}

var (
	isoDatePattern   = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	yesterdayPattern = regexp.MustCompile(`(?i)\byesterday\b`)
	todayPattern     = regexp.MustCompile(`(?i)\btoday\b`)
	tomorrowPattern  = regexp.MustCompile(`(?i)\btomorrow\b`)
)

// Extractor parses free text into a PartialExpense.
type Extractor struct {
	amounts   []*regexp.Regexp
	merchants []MerchantRule
	now       func() time.Time
}

// ExtractorOption customises an Extractor.
type ExtractorOption func(*Extractor)

// WithClock fixes the reference time for relative dates.
func WithClock(now func() time.Time) ExtractorOption {
	return func(e *Extractor) { e.now = now }
}

// WithMerchants replaces the merchant table.
func WithMerchants(rules []MerchantRule) ExtractorOption {
	return func(e *Extractor) { e.merchants = rules }
}

// WithAmountPatterns replaces the amount patterns, e.g. for another locale.
func WithAmountPatterns(patterns []*regexp.Regexp) ExtractorOption {
	return func(e *Extractor) { e.amounts = patterns }
}

// NewExtractor creates an extractor with the default tables.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		amounts:   DefaultAmountPatterns,
		merchants: DefaultMerchantRules,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract never fails; fields it cannot find are left nil.
func (e *Extractor) Extract(text string) PartialExpense {
	text = strings.TrimSpace(text)
	return PartialExpense{
		Amount:      e.amount(text),
		Date:        e.date(text),
		Merchant:    e.Merchant(text),
		Description: text,
	}
}

func (e *Extractor) amount(text string) *decimal.Decimal {
	// ISO dates would otherwise satisfy the bare-number pattern.
	text = isoDatePattern.ReplaceAllString(text, " ")
	for _, p := range e.amounts {
		m := p.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			continue
		}
		d = d.Round(2)
		return &d
	}
	return nil
}

func (e *Extractor) date(text string) *time.Time {
	var t time.Time
	switch {
	case yesterdayPattern.MatchString(text):
		t = e.now().AddDate(0, 0, -1)
	case todayPattern.MatchString(text):
		t = e.now()
	case tomorrowPattern.MatchString(text):
		t = e.now().AddDate(0, 0, 1)
	default:
		m := isoDatePattern.FindStringSubmatch(text)
		if m == nil {
			return nil
		}
		parsed, err := time.Parse(time.DateOnly, m[1])
		if err != nil {
			return nil
		}
		t = parsed
	}
	return &t
}

// Merchant returns the canonical merchant name found in text, or nil.
func (e *Extractor) Merchant(text string) *string {
	for _, r := range e.merchants {
		if r.Pattern.MatchString(text) {
			name := r.Name
			return &name
		}
	}
	return nil
}
