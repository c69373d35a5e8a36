package testutil_test

import (
	"testing"
	"time"

	"smartwallet/internal/errors"
	"smartwallet/internal/models"
	"smartwallet/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "categories", "transactions", "budgets", "recurring_transactions", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == 0 {
		t.Fatal("user should have a non-zero ID")
	}

	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	if category.Type != models.CategoryTypeExpense {
		t.Errorf("expected expense category, got %s", category.Type)
	}

	tx := testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionTypeIncome, 1000, time.Now())
	if tx.Amount != 1000 {
		t.Errorf("expected amount 1000, got %f", tx.Amount)
	}

	budget := testutil.CreateTestBudget(t, db, user.ID, category.ID, 100)
	if budget.Amount != 100 {
		t.Errorf("expected budget amount 100, got %f", budget.Amount)
	}

	rule := testutil.CreateTestRecurring(t, db, user.ID, category.ID, models.FrequencyMonthly, time.Now())
	if !rule.IsActive {
		t.Error("expected recurring rule to be active")
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrBudgetNotFound, "custom message")
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
