package models

import "strings"

// Category is one of the fixed expense classification labels.
type Category string

const (
	CategoryFoodDining    Category = "Food & Dining"
	CategoryTransport     Category = "Transportation"
	CategoryShopping      Category = "Shopping & Retail"
	CategoryBills         Category = "Bills & Utilities"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealthcare    Category = "Healthcare"
	CategoryEducation     Category = "Education"
	CategoryIncome        Category = "Income"
	CategorySubscriptions Category = "Subscriptions"
	CategoryTravel        Category = "Travel"
	CategoryHomeGarden    Category = "Home & Garden"
	CategoryPersonalCare  Category = "Personal Care"
	CategoryInsurance     Category = "Insurance"
	CategoryOther         Category = "Other"
)

// AllCategories lists every category in canonical order. Provider prompts and
// zero-shot candidate labels are built from this slice.
var AllCategories = []Category{
	CategoryFoodDining,
	CategoryTransport,
	CategoryShopping,
	CategoryBills,
	CategoryEntertainment,
	CategoryHealthcare,
	CategoryEducation,
	CategoryIncome,
	CategorySubscriptions,
	CategoryTravel,
	CategoryHomeGarden,
	CategoryPersonalCare,
	CategoryInsurance,
	CategoryOther,
}

var categorySet = func() map[Category]struct{} {
	m := make(map[Category]struct{}, len(AllCategories))
	for _, c := range AllCategories {
		m[c] = struct{}{}
	}
	return m
}()

// IsValid reports whether c is an exact member of the category set.
func (c Category) IsValid() bool {
	_, ok := categorySet[c]
	return ok
}

// ParseCategory matches s exactly (case-sensitive) after trimming whitespace.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.TrimSpace(s))
	if !c.IsValid() {
		return "", false
	}
	return c, true
}

// CategoryOrOther returns the parsed category, or Other when s is not a member.
func CategoryOrOther(s string) Category {
	if c, ok := ParseCategory(s); ok {
		return c
	}
	return CategoryOther
}

// CategoryLabels returns AllCategories as plain strings.
func CategoryLabels() []string {
	labels := make([]string, len(AllCategories))
	for i, c := range AllCategories {
		labels[i] = string(c)
	}
	return labels
}
