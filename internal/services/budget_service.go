package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	apperrors "smartwallet/internal/errors"
	"smartwallet/internal/models"
	"smartwallet/internal/pagination"
	"smartwallet/internal/schedule"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a new budget for an expense category. The category
// must exist, belong to the user, and be expense-typed; only one budget
// may exist per (user, category, period).
func (s *budgetService) CreateBudget(
	userID, categoryID uint,
	amount float64,
	period models.BudgetPeriod,
	alertThreshold float64,
) (*models.Budget, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if alertThreshold <= 0 || alertThreshold > 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "alert threshold must be in (0, 1]")
	}

	if err := s.checkExpenseCategory(userID, categoryID); err != nil {
		return nil, err
	}

	// Uniqueness per (user, category, period)
	var count int64
	if err := s.db.Model(&models.Budget{}).
		Where("user_id = ? AND category_id = ? AND period = ?", userID, categoryID, period).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrDuplicateBudget,
			fmt.Sprintf("A %s budget already exists for this category. Please edit the existing one.", period))
	}

	budget := &models.Budget{
		UserID:         userID,
		CategoryID:     categoryID,
		Amount:         amount,
		Period:         period,
		AlertThreshold: alertThreshold,
	}

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Preload("Category").First(budget, budget.ID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// checkExpenseCategory verifies the category exists, belongs to the user,
// and has type expense.
func (s *budgetService) checkExpenseCategory(userID, categoryID uint) error {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidCategory
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if category.Type != models.CategoryTypeExpense {
		return apperrors.WithMessage(apperrors.ErrInvalidCategory, "Budgets can only be set for expense categories.")
	}
	return nil
}

// GetUserBudgets returns a paginated list of the user's budgets, each with
// its current spending status.
func (s *budgetService) GetUserBudgets(userID uint, now time.Time, page pagination.PageRequest) (*pagination.PageResponse[BudgetWithStatus], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("Category").Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	withStatus := make([]BudgetWithStatus, 0, len(budgets))
	for i := range budgets {
		report, err := s.ComputeStatus(&budgets[i], now)
		if err != nil {
			return nil, err
		}
		withStatus = append(withStatus, BudgetWithStatus{Budget: budgets[i], BudgetStatusReport: *report})
	}

	result := pagination.NewPageResponse(withStatus, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates an existing budget's fields. Changing the period
// re-checks the one-budget-per-(user, category, period) invariant.
func (s *budgetService) UpdateBudget(
	userID, budgetID uint,
	amount *float64,
	period *models.BudgetPeriod,
	alertThreshold *float64,
) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	if amount != nil && *amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if alertThreshold != nil && (*alertThreshold <= 0 || *alertThreshold > 1) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "alert threshold must be in (0, 1]")
	}

	if period != nil && *period != budget.Period {
		var count int64
		if err := s.db.Model(&models.Budget{}).
			Where("user_id = ? AND category_id = ? AND period = ? AND id <> ?", userID, budget.CategoryID, *period, budgetID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil, apperrors.ErrDuplicateBudget
		}
	}

	updates := make(map[string]interface{})
	if amount != nil {
		updates["amount"] = *amount
	}
	if period != nil {
		updates["period"] = *period
	}
	if alertThreshold != nil {
		updates["alert_threshold"] = *alertThreshold
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return budget, nil
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID uint) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ComputeStatus derives spending state for the budget's current period
// window at the instant now. The returned percentage is clamped to 100
// for display; the classification below compares against the raw value,
// so a 150% overspend still reads as exceeded while showing 100.
func (s *budgetService) ComputeStatus(budget *models.Budget, now time.Time) (*BudgetStatusReport, error) {
	periodStart, periodEnd := schedule.PeriodWindow(budget.Period, now)

	var spent float64
	err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND category_id = ? AND type = ? AND date BETWEEN ? AND ?",
			budget.UserID, budget.CategoryID, models.TransactionTypeExpense, periodStart, periodEnd).
		Scan(&spent).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Amount is validated positive at creation, so the division is safe.
	rawPercentage := spent / budget.Amount * 100

	status := models.BudgetStatusOK
	if rawPercentage >= 100 {
		status = models.BudgetStatusExceeded
	} else if rawPercentage >= budget.AlertThreshold*100 {
		status = models.BudgetStatusWarning
	}

	return &BudgetStatusReport{
		BudgetID:    budget.ID,
		Spent:       spent,
		Remaining:   budget.Amount - spent,
		Percentage:  math.Min(rawPercentage, 100),
		Status:      status,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}, nil
}

// ListAlerts computes status for every budget the user owns and returns
// only those at warning or exceeded, with a display message.
func (s *budgetService) ListAlerts(userID uint, now time.Time) ([]BudgetAlert, error) {
	var budgets []models.Budget
	if err := s.db.Preload("Category").Where("user_id = ?", userID).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	alerts := []BudgetAlert{}
	for i := range budgets {
		budget := &budgets[i]
		report, err := s.ComputeStatus(budget, now)
		if err != nil {
			return nil, err
		}
		if report.Status == models.BudgetStatusOK {
			continue
		}

		var message string
		if report.Status == models.BudgetStatusExceeded {
			message = fmt.Sprintf("You've exceeded your %s budget!", budget.Category.Name)
		} else {
			message = fmt.Sprintf("You've used %.0f%% of your %s budget", report.Percentage, budget.Category.Name)
		}

		alerts = append(alerts, BudgetAlert{
			BudgetID:     budget.ID,
			CategoryName: budget.Category.Name,
			CategoryIcon: budget.Category.Icon,
			BudgetAmount: budget.Amount,
			Spent:        report.Spent,
			Percentage:   report.Percentage,
			Status:       report.Status,
			Message:      message,
		})
	}

	return alerts, nil
}
