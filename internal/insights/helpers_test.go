package insights

import (
	"time"

	"github.com/shopspring/decimal"

	"spendlens/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func rec(desc, amount string, cat models.Category, date time.Time) Record {
	return Record{
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Category:    cat,
		Date:        date,
	}
}

func withMerchant(r Record, m string) Record {
	r.Merchant = m
	return r
}
