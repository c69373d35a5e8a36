package models

import "time"

// Frequency represents how often a recurring transaction repeats
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyYearly   Frequency = "yearly"
)

// RecurringTransaction is a rule from which concrete transactions are
// generated on a schedule. NextDate always points at the earliest
// occurrence that has not been materialized yet; once IsActive is false
// the rule is never processed again unless explicitly reactivated.
type RecurringTransaction struct {
	Base
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	CategoryID    uint            `gorm:"not null;index" json:"category_id"`
	Type          TransactionType `gorm:"not null" json:"type"`
	Amount        float64         `gorm:"not null" json:"amount"`
	Description   string          `json:"description"`
	Frequency     Frequency       `gorm:"not null" json:"frequency"`
	StartDate     time.Time       `gorm:"not null" json:"start_date"`
	NextDate      time.Time       `gorm:"not null;index" json:"next_date"`
	EndDate       *time.Time      `json:"end_date,omitempty"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	LastProcessed *time.Time      `json:"last_processed,omitempty"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
}
