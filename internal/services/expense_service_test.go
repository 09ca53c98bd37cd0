package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendlens/internal/categorize"
	"spendlens/internal/models"
	"spendlens/internal/pagination"
	"spendlens/internal/testutil"
)

type stubCategorizer struct {
	category models.Category
	calls    int
	lastDesc string
}

func (s *stubCategorizer) Categorize(_ context.Context, description string) models.Category {
	s.calls++
	s.lastDesc = description
	return s.category
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func fixedClock(svc ExpenseServicer, now time.Time) {
	svc.(*expenseService).now = func() time.Time { return now }
}

func TestCreateExpense(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	t.Run("explicit_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		cat := &stubCategorizer{category: models.CategoryTravel}
		svc := NewExpenseService(db, cat, nil)
		user := testutil.CreateTestUser(t, db)
		date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

		e, err := svc.CreateExpense(ctx, user.ID, ExpenseInput{
			Amount:      dec("12.50"),
			Description: "Lunch with team",
			Category:    "Food & Dining",
			Date:        &date,
		})
		testutil.AssertNoError(t, err)

		if e.ID == "" {
			t.Fatal("expected expense ID to be set")
		}
		testutil.AssertAmount(t, e.Amount, "12.50")
		if e.Category != models.CategoryFoodDining {
			t.Errorf("expected Food & Dining, got %s", e.Category)
		}
		if !e.Date.Equal(date) {
			t.Errorf("expected date %v, got %v", date, e.Date)
		}
		if cat.calls != 0 {
			t.Errorf("categorizer should not run when a category is given, ran %d times", cat.calls)
		}
	})

	t.Run("missing_category_is_categorized", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		cat := &stubCategorizer{category: models.CategoryTransport}
		svc := NewExpenseService(db, cat, nil)
		user := testutil.CreateTestUser(t, db)

		e, err := svc.CreateExpense(ctx, user.ID, ExpenseInput{Amount: dec("30"), Description: "  Uber to airport "})
		testutil.AssertNoError(t, err)

		if e.Category != models.CategoryTransport {
			t.Errorf("expected Transportation, got %s", e.Category)
		}
		if cat.lastDesc != "Uber to airport" {
			t.Errorf("expected trimmed description, got %q", cat.lastDesc)
		}
		if e.Merchant == nil || *e.Merchant != "uber" {
			t.Errorf("expected merchant uber, got %v", e.Merchant)
		}
	})

	t.Run("free_text_extraction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		clock := func() time.Time { return now }
		svc := NewExpenseService(db, nil, categorize.NewExtractor(categorize.WithClock(clock)))
		user := testutil.CreateTestUser(t, db)

		e, err := svc.CreateExpense(ctx, user.ID, ExpenseInput{Description: "Starbucks coffee $4.75 yesterday"})
		testutil.AssertNoError(t, err)

		testutil.AssertAmount(t, e.Amount, "4.75")
		if e.Category != models.CategoryFoodDining {
			t.Errorf("expected keyword category Food & Dining, got %s", e.Category)
		}
		if e.Merchant == nil || *e.Merchant != "starbucks" {
			t.Errorf("expected merchant starbucks, got %v", e.Merchant)
		}
		if e.Date.Day() != 14 {
			t.Errorf("expected yesterday (14th), got %v", e.Date)
		}
	})

	t.Run("free_text_amount_with_thousands_separator", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil, categorize.NewExtractor())
		user := testutil.CreateTestUser(t, db)

		e, err := svc.CreateExpense(ctx, user.ID, ExpenseInput{Description: "Laptop $1,299.99 from amazon"})
		testutil.AssertNoError(t, err)

		testutil.AssertAmount(t, e.Amount, "1299.99")

		var stored models.Expense
		if err := db.First(&stored, "id = ?", e.ID).Error; err != nil {
			t.Fatalf("reload expense: %v", err)
		}
		testutil.AssertAmount(t, stored.Amount, "1299.99")
	})

	t.Run("defaults_when_empty", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil, nil)
		fixedClock(svc, now)
		user := testutil.CreateTestUser(t, db)

		e, err := svc.CreateExpense(ctx, user.ID, ExpenseInput{})
		testutil.AssertNoError(t, err)

		if !e.Amount.IsZero() {
			t.Errorf("expected zero amount, got %s", e.Amount)
		}
		if e.Category != models.CategoryOther {
			t.Errorf("expected Other, got %s", e.Category)
		}
		if !e.Date.Equal(now) {
			t.Errorf("expected date %v, got %v", now, e.Date)
		}
	})

	t.Run("invalid_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil, nil)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateExpense(ctx, user.ID, ExpenseInput{Amount: dec("1"), Category: "food"})
		testutil.AssertAppError(t, err, "INVALID_CATEGORY")
	})

	t.Run("negative_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil, nil)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateExpense(ctx, user.ID, ExpenseInput{Amount: dec("-5"), Description: "refund"})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestImportExpenses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewExpenseService(db, nil, nil)
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	fixedClock(svc, now)
	user := testutil.CreateTestUser(t, db)
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	imported, err := svc.ImportExpenses(user.ID, []ExpenseInput{
		{Amount: dec("10"), Description: "Books", Category: "Education", Date: &date},
		{Description: "mystery", Category: "Snacks"},
	})
	testutil.AssertNoError(t, err)

	if len(imported) != 2 {
		t.Fatalf("expected 2 imported, got %d", len(imported))
	}
	if imported[0].Category != models.CategoryEducation {
		t.Errorf("expected Education, got %s", imported[0].Category)
	}
	if imported[1].Category != models.CategoryOther {
		t.Errorf("unknown category should become Other, got %s", imported[1].Category)
	}
	if !imported[1].Amount.IsZero() {
		t.Errorf("missing amount should be zero, got %s", imported[1].Amount)
	}
	if !imported[1].Date.Equal(now) {
		t.Errorf("missing date should be now, got %v", imported[1].Date)
	}

	all, err := svc.ListAll(user.ID)
	testutil.AssertNoError(t, err)
	if len(all) != 2 {
		t.Errorf("expected 2 stored expenses, got %d", len(all))
	}
}

func TestGetUserExpenses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewExpenseService(db, nil, nil)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	testutil.CreateTestExpense(t, db, user.ID, "10", testutil.WithDate(jan), testutil.WithCategory(models.CategoryFoodDining))
	testutil.CreateTestExpense(t, db, user.ID, "20", testutil.WithDate(feb), testutil.WithCategory(models.CategoryTransport))
	testutil.CreateTestExpense(t, db, user.ID, "30", testutil.WithDate(mar), testutil.WithCategory(models.CategoryFoodDining))
	testutil.CreateTestExpense(t, db, other.ID, "99", testutil.WithDate(mar))

	t.Run("newest_first_and_owned_only", func(t *testing.T) {
		res, err := svc.GetUserExpenses(user.ID, pagination.PageRequest{}, ExpenseFilter{})
		testutil.AssertNoError(t, err)
		if res.TotalItems != 3 {
			t.Fatalf("expected 3 items, got %d", res.TotalItems)
		}
		if !res.Data[0].Date.Equal(mar) {
			t.Errorf("expected newest first, got %v", res.Data[0].Date)
		}
	})

	t.Run("category_filter", func(t *testing.T) {
		cat := models.CategoryFoodDining
		res, err := svc.GetUserExpenses(user.ID, pagination.PageRequest{}, ExpenseFilter{Category: &cat})
		testutil.AssertNoError(t, err)
		if res.TotalItems != 2 {
			t.Errorf("expected 2 food expenses, got %d", res.TotalItems)
		}
	})

	t.Run("date_range_filter", func(t *testing.T) {
		from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
		res, err := svc.GetUserExpenses(user.ID, pagination.PageRequest{}, ExpenseFilter{FromDate: &from, ToDate: &to})
		testutil.AssertNoError(t, err)
		if res.TotalItems != 1 {
			t.Errorf("expected 1 expense in February, got %d", res.TotalItems)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		res, err := svc.GetUserExpenses(user.ID, pagination.PageRequest{Page: 2, PageSize: 2}, ExpenseFilter{})
		testutil.AssertNoError(t, err)
		if len(res.Data) != 1 {
			t.Errorf("expected 1 item on page 2, got %d", len(res.Data))
		}
		if res.TotalPages != 2 {
			t.Errorf("expected 2 pages, got %d", res.TotalPages)
		}
	})
}

func TestUpdateExpense(t *testing.T) {
	t.Run("partial_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil, nil)
		user := testutil.CreateTestUser(t, db)
		e := testutil.CreateTestExpense(t, db, user.ID, "10", testutil.WithDescription("old"))

		desc := "new"
		cat := "Insurance"
		updated, err := svc.UpdateExpense(user.ID, e.ID, ExpenseUpdate{Description: &desc, Category: &cat, Amount: dec("42.10")})
		testutil.AssertNoError(t, err)

		if updated.Description != "new" {
			t.Errorf("expected description new, got %s", updated.Description)
		}
		if updated.Category != models.CategoryInsurance {
			t.Errorf("expected Insurance, got %s", updated.Category)
		}
		testutil.AssertAmount(t, updated.Amount, "42.10")
	})

	t.Run("invalid_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil, nil)
		user := testutil.CreateTestUser(t, db)
		e := testutil.CreateTestExpense(t, db, user.ID, "10")

		cat := "Groceries"
		_, err := svc.UpdateExpense(user.ID, e.ID, ExpenseUpdate{Category: &cat})
		testutil.AssertAppError(t, err, "INVALID_CATEGORY")
	})

	t.Run("other_users_expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil, nil)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		e := testutil.CreateTestExpense(t, db, owner.ID, "10")

		_, err := svc.UpdateExpense(intruder.ID, e.ID, ExpenseUpdate{Amount: dec("1")})
		testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
	})
}

func TestDeleteExpense(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewExpenseService(db, nil, nil)
	user := testutil.CreateTestUser(t, db)
	e := testutil.CreateTestExpense(t, db, user.ID, "10")

	testutil.AssertNoError(t, svc.DeleteExpense(user.ID, e.ID))

	_, err := svc.GetExpenseByID(user.ID, e.ID)
	testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")

	err = svc.DeleteExpense(user.ID, e.ID)
	testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
}

func TestListAllAndSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewExpenseService(db, nil, nil)
	user := testutil.CreateTestUser(t, db)

	empty, err := svc.ListAll(user.ID)
	testutil.AssertNoError(t, err)
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil list, got %v", empty)
	}

	testutil.CreateTestExpense(t, db, user.ID, "10.25", testutil.WithCategory(models.CategoryBills), testutil.WithDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	testutil.CreateTestExpense(t, db, user.ID, "4.75", testutil.WithCategory(models.CategoryBills), testutil.WithDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	testutil.CreateTestExpense(t, db, user.ID, "3", testutil.WithCategory(models.CategoryFoodDining), testutil.WithDate(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))

	all, err := svc.ListAll(user.ID)
	testutil.AssertNoError(t, err)
	if len(all) != 3 || all[0].Amount.StringFixed(2) != "4.75" {
		t.Errorf("expected newest (4.75) first, got %v", all)
	}

	summary, err := svc.SummaryByCategory(user.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertAmount(t, summary[models.CategoryBills], "15")
	testutil.AssertAmount(t, summary[models.CategoryFoodDining], "3")
}
