package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"spendlens/internal/categorize"
	apperrors "spendlens/internal/errors"
	"spendlens/internal/insights"
	"spendlens/internal/models"
	"spendlens/internal/pagination"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	db          *gorm.DB
	categorizer ExpenseCategorizer
	extractor   *categorize.Extractor
	now         func() time.Time
}

// NewExpenseService creates a new ExpenseServicer. A nil categorizer falls
// back to the offline keyword table.
func NewExpenseService(db *gorm.DB, categorizer ExpenseCategorizer, extractor *categorize.Extractor) ExpenseServicer {
	if categorizer == nil {
		categorizer = categorize.New(categorize.Config{}, nil)
	}
	if extractor == nil {
		extractor = categorize.NewExtractor()
	}
	return &expenseService{
		db:          db,
		categorizer: categorizer,
		extractor:   extractor,
		now:         time.Now,
	}
}

// CreateExpense fills in whatever the client left out, then saves. A
// description without an amount is parsed as free text ("Lunch $12 today").
func (s *expenseService) CreateExpense(ctx context.Context, userID string, in ExpenseInput) (*models.Expense, error) {
	in.Description = strings.TrimSpace(in.Description)

	if in.Amount == nil && in.Description != "" {
		p := s.extractor.Extract(in.Description)
		in.Amount = p.Amount
		if in.Date == nil {
			in.Date = p.Date
		}
		if in.Merchant == nil {
			in.Merchant = p.Merchant
		}
	}
	if in.Merchant == nil && in.Description != "" {
		in.Merchant = s.extractor.Merchant(in.Description)
	}

	amount := decimal.Zero
	if in.Amount != nil {
		amount = *in.Amount
	}
	if amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}

	var category models.Category
	switch {
	case strings.TrimSpace(in.Category) != "":
		c, ok := models.ParseCategory(in.Category)
		if !ok {
			return nil, apperrors.ErrInvalidCategory
		}
		category = c
	case in.Description != "":
		category = s.categorizer.Categorize(ctx, in.Description)
	default:
		category = models.CategoryOther
	}

	date := s.now().UTC()
	if in.Date != nil && !in.Date.IsZero() {
		date = *in.Date
	}

	expense := &models.Expense{
		UserID:      userID,
		Amount:      amount.Round(2),
		Description: in.Description,
		Category:    category,
		Date:        date,
		Merchant:    in.Merchant,
	}
	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// ImportExpenses saves rows in one database transaction. Rows are lenient:
// unknown categories become Other, missing amounts zero, missing dates now.
func (s *expenseService) ImportExpenses(userID string, rows []ExpenseInput) ([]models.Expense, error) {
	if len(rows) == 0 {
		return []models.Expense{}, nil
	}

	now := s.now().UTC()
	expenses := make([]models.Expense, len(rows))
	for i, r := range rows {
		amount := decimal.Zero
		if r.Amount != nil && !r.Amount.IsNegative() {
			amount = r.Amount.Round(2)
		}
		date := now
		if r.Date != nil && !r.Date.IsZero() {
			date = *r.Date
		}
		expenses[i] = models.Expense{
			UserID:      userID,
			Amount:      amount,
			Description: strings.TrimSpace(r.Description),
			Category:    models.CategoryOrOther(r.Category),
			Date:        date,
			Merchant:    r.Merchant,
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(expenses, 100).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

// GetExpenseByID retrieves an expense by ID for a specific user
func (s *expenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// GetUserExpenses retrieves a paginated, filtered list of a user's expenses,
// newest first.
func (s *expenseService) GetUserExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)
	base = applyExpenseFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyExpenseFilters(q *gorm.DB, f ExpenseFilter) *gorm.DB {
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	return q
}

// ListAll returns every expense of the user, newest first. This is the
// input to all insight computations.
func (s *expenseService) ListAll(userID string) ([]models.Expense, error) {
	var expenses []models.Expense
	if err := s.db.Where("user_id = ?", userID).Order("date DESC").Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	return expenses, nil
}

// UpdateExpense applies the non-nil fields of in.
func (s *expenseService) UpdateExpense(userID, expenseID string, in ExpenseUpdate) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Amount != nil {
		if in.Amount.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
		}
		updates["amount"] = in.Amount.Round(2)
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		c, ok := models.ParseCategory(*in.Category)
		if !ok {
			return nil, apperrors.ErrInvalidCategory
		}
		updates["category"] = c
	}
	if in.Date != nil {
		updates["date"] = *in.Date
	}
	if in.Merchant != nil {
		updates["merchant"] = *in.Merchant
	}

	if len(updates) == 0 {
		return expense, nil
	}

	if err := s.db.Model(expense).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetExpenseByID(userID, expenseID)
}

// DeleteExpense soft-deletes an expense owned by the user.
func (s *expenseService) DeleteExpense(userID, expenseID string) error {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SummaryByCategory totals the user's expenses per category.
func (s *expenseService) SummaryByCategory(userID string) (map[models.Category]decimal.Decimal, error) {
	expenses, err := s.ListAll(userID)
	if err != nil {
		return nil, err
	}
	return insights.SummaryByCategory(insights.FromExpenses(expenses)), nil
}
