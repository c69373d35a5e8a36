package integration

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestBudgetFlow_CreateAndCheckStatus(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "budget@test.com", "password123")

	categoryID := app.createCategory(t, token, "Groceries", "expense")

	// Step 1: Create a monthly budget of $200 for the category
	rec := app.request("POST", "/api/v1/budgets",
		fmt.Sprintf(`{"category_id":%.0f,"amount":200,"period":"monthly"}`, categoryID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating budget, got %d: %s", rec.Code, rec.Body.String())
	}
	budgetResult := parseJSON(t, rec)
	budget := budgetResult["budget"].(map[string]interface{})
	budgetID := budget["id"].(float64)
	if budget["alert_threshold"].(float64) != 0.8 {
		t.Errorf("expected default alert threshold 0.8, got %v", budget["alert_threshold"])
	}

	// Step 2: Check status before any spending
	rec = app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f", budgetID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	status := parseJSON(t, rec)["status"].(map[string]interface{})
	if status["spent"].(float64) != 0 {
		t.Errorf("expected 0 spent before transactions, got %.0f", status["spent"].(float64))
	}
	if status["remaining"].(float64) != 200 {
		t.Errorf("expected 200 remaining, got %.0f", status["remaining"].(float64))
	}
	if status["status"] != "ok" {
		t.Errorf("expected ok status, got %v", status["status"])
	}

	// Step 3: Add expense transactions in the current period
	now := time.Now()
	rec = app.request("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"category_id":%.0f,"type":"expense","amount":80,"description":"Weekly groceries","date":%q}`,
			categoryID, now.Format(time.RFC3339)), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"category_id":%.0f,"type":"expense","amount":50,"description":"More groceries","date":%q}`,
			categoryID, now.Format(time.RFC3339)), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Step 4: Check status ($130 spent out of $200)
	rec = app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f", budgetID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	status = parseJSON(t, rec)["status"].(map[string]interface{})
	if status["spent"].(float64) != 130 {
		t.Errorf("expected 130 spent (80+50), got %.0f", status["spent"].(float64))
	}
	if status["remaining"].(float64) != 70 {
		t.Errorf("expected 70 remaining, got %.0f", status["remaining"].(float64))
	}
	if status["percentage"].(float64) != 65 {
		t.Errorf("expected 65%% spent, got %.2f%%", status["percentage"].(float64))
	}
	if status["status"] != "ok" {
		t.Errorf("expected ok status at 65%%, got %v", status["status"])
	}
}

func TestBudgetFlow_ExceededAndAlerts(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "overbudget@test.com", "password123")

	categoryID := app.createCategory(t, token, "Dining", "expense")

	rec := app.request("POST", "/api/v1/budgets",
		fmt.Sprintf(`{"category_id":%.0f,"amount":50,"period":"monthly"}`, categoryID), token)
	budgetID := parseJSON(t, rec)["budget"].(map[string]interface{})["id"].(float64)

	// Spend $75 on a $50 budget
	now := time.Now()
	app.request("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"category_id":%.0f,"type":"expense","amount":75,"date":%q}`,
			categoryID, now.Format(time.RFC3339)), token)

	// Check status: exceeded, percentage display capped at 100
	rec = app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f", budgetID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	status := parseJSON(t, rec)["status"].(map[string]interface{})
	if status["spent"].(float64) != 75 {
		t.Errorf("expected 75 spent, got %.0f", status["spent"].(float64))
	}
	if status["remaining"].(float64) != -25 {
		t.Errorf("expected -25 remaining, got %.0f", status["remaining"].(float64))
	}
	if status["percentage"].(float64) != 100 {
		t.Errorf("expected percentage capped at 100, got %.2f", status["percentage"].(float64))
	}
	if status["status"] != "exceeded" {
		t.Errorf("expected exceeded status, got %v", status["status"])
	}

	// The alerts endpoint must report it
	rec = app.request("GET", "/api/v1/budgets/alerts", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	alerts := parseJSON(t, rec)["alerts"].([]interface{})
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	alert := alerts[0].(map[string]interface{})
	if alert["status"] != "exceeded" {
		t.Errorf("expected exceeded alert, got %v", alert["status"])
	}
	if !strings.Contains(alert["message"].(string), "exceeded your Dining budget") {
		t.Errorf("unexpected alert message: %v", alert["message"])
	}
}

func TestBudgetFlow_DuplicatePeriodRejected(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "dupbudget@test.com", "password123")

	categoryID := app.createCategory(t, token, "Transport", "expense")

	body := fmt.Sprintf(`{"category_id":%.0f,"amount":100,"period":"monthly"}`, categoryID)
	rec := app.request("POST", "/api/v1/budgets", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Second monthly budget for the same category conflicts
	rec = app.request("POST", "/api/v1/budgets", body, token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "DUPLICATE_BUDGET" {
		t.Errorf("expected DUPLICATE_BUDGET, got %v", errObj["code"])
	}

	// A weekly budget for the same category is fine
	rec = app.request("POST", "/api/v1/budgets",
		fmt.Sprintf(`{"category_id":%.0f,"amount":30,"period":"weekly"}`, categoryID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for different period, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBudgetFlow_IncomeCategoryRejected(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "incomebudget@test.com", "password123")

	categoryID := app.createCategory(t, token, "Bonus", "income")

	rec := app.request("POST", "/api/v1/budgets",
		fmt.Sprintf(`{"category_id":%.0f,"amount":100}`, categoryID), token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for income category, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "INVALID_CATEGORY" {
		t.Errorf("expected INVALID_CATEGORY, got %v", errObj["code"])
	}
}

func TestBudgetFlow_CRUDOperations(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "budgetcrud@test.com", "password123")

	categoryID := app.createCategory(t, token, "Utilities", "expense")

	// Create budget
	rec := app.request("POST", "/api/v1/budgets",
		fmt.Sprintf(`{"category_id":%.0f,"amount":150,"period":"monthly"}`, categoryID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	budgetID := parseJSON(t, rec)["budget"].(map[string]interface{})["id"].(float64)

	// Update amount and threshold
	rec = app.request("PUT", fmt.Sprintf("/api/v1/budgets/%.0f", budgetID),
		`{"amount":200,"alert_threshold":0.9}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := parseJSON(t, rec)["budget"].(map[string]interface{})
	if updated["amount"].(float64) != 200 {
		t.Errorf("expected amount 200, got %.0f", updated["amount"].(float64))
	}
	if updated["alert_threshold"].(float64) != 0.9 {
		t.Errorf("expected threshold 0.9, got %v", updated["alert_threshold"])
	}

	// List budgets
	rec = app.request("GET", "/api/v1/budgets", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	listResult := parseJSON(t, rec)
	if listResult["total_items"].(float64) != 1 {
		t.Errorf("expected 1 budget in list, got %.0f", listResult["total_items"].(float64))
	}

	// Delete budget
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/budgets/%.0f", budgetID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Verify deleted (should 404)
	rec = app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f", budgetID), "", token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after deletion, got %d", rec.Code)
	}
}

func TestBudgetFlow_IncomeIgnored(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "budgetincome@test.com", "password123")

	expenseID := app.createCategory(t, token, "Hobbies", "expense")

	rec := app.request("POST", "/api/v1/budgets",
		fmt.Sprintf(`{"category_id":%.0f,"amount":100,"period":"monthly"}`, expenseID), token)
	budgetID := parseJSON(t, rec)["budget"].(map[string]interface{})["id"].(float64)

	// Add an income transaction in the same category
	now := time.Now()
	app.request("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"category_id":%.0f,"type":"income","amount":50,"date":%q}`,
			expenseID, now.Format(time.RFC3339)), token)

	// Income must not count as spending
	rec = app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f", budgetID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	status := parseJSON(t, rec)["status"].(map[string]interface{})
	if status["spent"].(float64) != 0 {
		t.Errorf("expected 0 spent (income ignored), got %.0f", status["spent"].(float64))
	}
}
