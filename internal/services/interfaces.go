package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"spendlens/internal/models"
	"spendlens/internal/pagination"
)

// RegisterInput is a new account as submitted by a client.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UserProfile is an account plus totals over the expenses it owns.
type UserProfile struct {
	User         *models.User
	ExpenseCount int64
	TotalAmount  decimal.Decimal
}

// UserServicer covers account registration, login and profile lookup.
type UserServicer interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
}

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	Category *models.Category
	FromDate *time.Time
	ToDate   *time.Time
}

// ExpenseInput is a new expense as submitted by a client. Missing fields are
// filled in by the service: Amount, Date and Merchant from the description
// text, Category by the categorizer.
type ExpenseInput struct {
	Amount      *decimal.Decimal
	Description string
	Category    string
	Date        *time.Time
	Merchant    *string
}

// ExpenseUpdate carries the fields to change; nil means unchanged.
type ExpenseUpdate struct {
	Amount      *decimal.Decimal
	Description *string
	Category    *string
	Date        *time.Time
	Merchant    *string
}

// ExpenseCategorizer resolves a description to a category. It must always
// return a member of the category set.
type ExpenseCategorizer interface {
	Categorize(ctx context.Context, description string) models.Category
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(ctx context.Context, userID string, in ExpenseInput) (*models.Expense, error)
	ImportExpenses(userID string, rows []ExpenseInput) ([]models.Expense, error)
	GetExpenseByID(userID, expenseID string) (*models.Expense, error)
	GetUserExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	ListAll(userID string) ([]models.Expense, error)
	UpdateExpense(userID, expenseID string, in ExpenseUpdate) (*models.Expense, error)
	DeleteExpense(userID, expenseID string) error
	SummaryByCategory(userID string) (map[models.Category]decimal.Decimal, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
