package models

// BudgetPeriod represents the period type for a budget
type BudgetPeriod string

const (
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// BudgetStatus classifies spending against a budget's limit.
type BudgetStatus string

const (
	BudgetStatusOK       BudgetStatus = "ok"
	BudgetStatusWarning  BudgetStatus = "warning"
	BudgetStatusExceeded BudgetStatus = "exceeded"
)

// Budget represents a spending limit for an expense category.
// At most one budget may exist per (user, category, period).
type Budget struct {
	Base
	UserID         uint         `gorm:"not null;index" json:"user_id"`
	CategoryID     uint         `gorm:"not null;index" json:"category_id"`
	Amount         float64      `gorm:"not null" json:"amount"`
	Period         BudgetPeriod `gorm:"not null" json:"period"`
	AlertThreshold float64      `gorm:"not null;default:0.8" json:"alert_threshold"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
}
