package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single spending (or income) record owned by one user.
type Expense struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Description string          `json:"description"`
	Category    Category        `gorm:"not null;index" json:"category"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Merchant    *string         `json:"merchant,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
