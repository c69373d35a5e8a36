package services

import (
	"time"

	"smartwallet/internal/models"
	"smartwallet/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	RecordLogin(userID uint)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID uint, name string, categoryType models.CategoryType, icon, color string) (*models.Category, error)
	GetUserCategories(userID uint, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID uint) (*models.Category, error)
	UpdateCategory(userID, categoryID uint, name, icon, color string) (*models.Category, error)
	SeedDefaults(userID uint) ([]models.Category, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *uint
}

// CategoryExpense is one row of the per-category expense breakdown.
type CategoryExpense struct {
	CategoryID    uint    `json:"category_id"`
	CategoryName  string  `json:"category_name"`
	CategoryIcon  string  `json:"category_icon"`
	CategoryColor string  `json:"category_color"`
	Total         float64 `json:"total"`
}

// TransactionSummary aggregates a user's transactions.
type TransactionSummary struct {
	TotalIncome        float64           `json:"total_income"`
	TotalExpenses      float64           `json:"total_expenses"`
	Balance            float64           `json:"balance"`
	ExpensesByCategory []CategoryExpense `json:"expenses_by_category"`
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID, categoryID uint, transactionType models.TransactionType, amount float64, description string, date time.Time) (*models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uint, amount *float64, description *string, transactionType *models.TransactionType, categoryID *uint, date *time.Time) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
	GetSummary(userID uint) (*TransactionSummary, error)
}

// BudgetStatusReport contains derived spending state for a budget's
// current period window.
type BudgetStatusReport struct {
	BudgetID    uint                `json:"budget_id"`
	Spent       float64             `json:"spent"`
	Remaining   float64             `json:"remaining"`
	Percentage  float64             `json:"percentage"`
	Status      models.BudgetStatus `json:"status"`
	PeriodStart time.Time           `json:"period_start"`
	PeriodEnd   time.Time           `json:"period_end"`
}

// BudgetWithStatus pairs a budget with its computed status report.
type BudgetWithStatus struct {
	models.Budget
	BudgetStatusReport
}

// BudgetAlert is a budget whose spending crossed its alert threshold.
type BudgetAlert struct {
	BudgetID     uint                `json:"budget_id"`
	CategoryName string              `json:"category_name"`
	CategoryIcon string              `json:"category_icon"`
	BudgetAmount float64             `json:"budget_amount"`
	Spent        float64             `json:"spent"`
	Percentage   float64             `json:"percentage"`
	Status       models.BudgetStatus `json:"status"`
	Message      string              `json:"message"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID, categoryID uint, amount float64, period models.BudgetPeriod, alertThreshold float64) (*models.Budget, error)
	GetUserBudgets(userID uint, now time.Time, page pagination.PageRequest) (*pagination.PageResponse[BudgetWithStatus], error)
	GetBudgetByID(userID, budgetID uint) (*models.Budget, error)
	UpdateBudget(userID, budgetID uint, amount *float64, period *models.BudgetPeriod, alertThreshold *float64) (*models.Budget, error)
	DeleteBudget(userID, budgetID uint) error
	ComputeStatus(budget *models.Budget, now time.Time) (*BudgetStatusReport, error)
	ListAlerts(userID uint, now time.Time) ([]BudgetAlert, error)
}

// RuleFailure reports a recurring rule the scheduler could not process.
type RuleFailure struct {
	RuleID uint   `json:"rule_id"`
	Error  string `json:"error"`
}

// ProcessResult summarizes one scheduler run.
type ProcessResult struct {
	ProcessedCount int                  `json:"processed_count"`
	Generated      []models.Transaction `json:"generated"`
	Failed         []RuleFailure        `json:"failed,omitempty"`
}

// RecurringServicer defines the contract for recurring-transaction business logic.
type RecurringServicer interface {
	CreateRecurring(userID, categoryID uint, transactionType models.TransactionType, amount float64, description string, frequency models.Frequency, startDate time.Time, endDate *time.Time) (*models.RecurringTransaction, error)
	GetUserRecurring(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.RecurringTransaction], error)
	GetRecurringByID(userID, ruleID uint) (*models.RecurringTransaction, error)
	UpdateRecurring(userID, ruleID uint, amount *float64, description *string, transactionType *models.TransactionType, categoryID *uint, frequency *models.Frequency, endDate *time.Time, clearEndDate bool, isActive *bool) (*models.RecurringTransaction, error)
	DeleteRecurring(userID, ruleID uint) error
	Upcoming(userID uint, now time.Time) ([]models.RecurringTransaction, error)
	ProcessDue(userID uint, now time.Time) (*ProcessResult, error)
	SkipNext(userID, ruleID uint) (*models.RecurringTransaction, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
