package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"spendlens/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
// The password is always "password123".
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// ExpenseOption tweaks a fixture expense before it is saved.
type ExpenseOption func(*models.Expense)

// WithCategory sets the expense category.
func WithCategory(c models.Category) ExpenseOption {
	return func(e *models.Expense) { e.Category = c }
}

// WithDate sets the expense date.
func WithDate(d time.Time) ExpenseOption {
	return func(e *models.Expense) { e.Date = d }
}

// WithDescription sets the expense description.
func WithDescription(desc string) ExpenseOption {
	return func(e *models.Expense) { e.Description = desc }
}

// WithMerchant sets the expense merchant.
func WithMerchant(m string) ExpenseOption {
	return func(e *models.Expense) { e.Merchant = &m }
}

// CreateTestExpense creates an expense with the given amount (e.g. "12.50").
// Defaults: category Other, dated now, a unique description.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID string, amount string, opts ...ExpenseOption) *models.Expense {
	t.Helper()

	e := &models.Expense{
		UserID:      userID,
		Amount:      decimal.RequireFromString(amount),
		Description: fmt.Sprintf("Test Expense %d", nextID()),
		Category:    models.CategoryOther,
		Date:        time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := db.Create(e).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return e
}
