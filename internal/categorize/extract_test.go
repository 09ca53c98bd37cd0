package categorize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Amount(t *testing.T) {
	e := NewExtractor()
	tests := []struct {
		name string
		text string
		want string // empty means no amount
	}{
		{"dollar prefix", "Lunch $12.50 at cafe", "12.5"},
		{"dollar prefix with space", "Paid $ 40 for parking", "40"},
		{"rupee prefix", "₹250 chai and snacks", "250"},
		{"rs prefix", "Rs. 99 recharge", "99"},
		{"euro suffix", "Dinner 35€ in Paris", "35"},
		{"dollars word", "spent 20 dollars on books", "20"},
		{"usd word", "Netflix 15.99 USD", "15.99"},
		{"prefix wins over later bare number", "2 coffees for $7.25", "7.25"},
		{"bare number fallback", "uber 18", "18"},
		{"thousands separator with prefix", "Laptop $1,299.99", "1299.99"},
		{"thousands separator with word", "Paid 1,200 dollars for rent", "1200"},
		{"several separators", "Car ₹1,250,000 down payment", "1250000"},
		{"third decimal rounds to cents", "Coffee $12.345", "12.35"},
		{"third decimal rounds down", "Tea $3.104", "3.1"},
		{"iso date is not an amount", "groceries on 2024-03-05", ""},
		{"nothing numeric", "coffee with friends", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text)
			if tt.want == "" {
				assert.Nil(t, got.Amount)
				return
			}
			require.NotNil(t, got.Amount)
			assert.Equal(t, tt.want, got.Amount.String())
		})
	}
}

func TestExtractor_Date(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	e := NewExtractor(WithClock(func() time.Time { return now }))

	tests := []struct {
		text string
		want *time.Time
	}{
		{"Coffee yesterday $4", ptrTime(now.AddDate(0, 0, -1))},
		{"Coffee TODAY", ptrTime(now)},
		{"Flight tomorrow", ptrTime(now.AddDate(0, 0, 1))},
		{"Rent paid 2024-06-01", ptrTime(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))},
		{"Bad date 2024-13-45", nil},
		{"no date here", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := e.Extract(tt.text)
			if tt.want == nil {
				assert.Nil(t, got.Date)
				return
			}
			require.NotNil(t, got.Date)
			assert.True(t, tt.want.Equal(*got.Date), "got %v want %v", got.Date, tt.want)
		})
	}
}

func TestExtractor_Merchant(t *testing.T) {
	e := NewExtractor()
	tests := []struct {
		text string
		want string
	}{
		{"McDonalds drive thru", "mcdonald's"},
		{"SBUX latte", "starbucks"},
		{"Amazon order", "amazon"},
		{"Wal-Mart run", "walmart"},
		{"Uber to airport", "uber"},
		{"App Store purchase", "apple"},
		{"BP fuel", "bp"},
		{"BOA fee", "bank of america"},
		{"Wells Fargo transfer", "wells fargo"},
		{"Subway sandwich", "subway"},
		{"Google Play subscription", "google"},
		// Short tokens only match whole words.
		{"bpm monitor", ""},
		{"boat rental", ""},
		{"local bakery", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := e.Extract(tt.text).Merchant
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestExtractor_DescriptionAndCustomTable(t *testing.T) {
	e := NewExtractor(WithMerchants([]MerchantRule{merchant("tesco", "retail", `tesco`)}))
	got := e.Extract("  Tesco £23.10  ")
	assert.Equal(t, "Tesco £23.10", got.Description)
	require.NotNil(t, got.Merchant)
	assert.Equal(t, "tesco", *got.Merchant)
	require.NotNil(t, got.Amount)
	assert.Equal(t, "23.1", got.Amount.String())
	assert.Nil(t, e.Merchant("Amazon"))
}

func TestDefaultMerchantRules_Groups(t *testing.T) {
	groups := map[string]int{}
	for _, r := range DefaultMerchantRules {
		groups[r.Group]++
	}
	assert.Len(t, DefaultMerchantRules, 23)
	assert.Equal(t, map[string]int{"food": 6, "retail": 4, "services": 6, "fuel": 4, "banking": 3}, groups)
}

func ptrTime(t time.Time) *time.Time { return &t }
