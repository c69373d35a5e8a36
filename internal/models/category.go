package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category represents a transaction category
type Category struct {
	Base
	UserID uint         `gorm:"not null;index" json:"user_id"`
	Name   string       `gorm:"not null" json:"name"`
	Type   CategoryType `gorm:"not null" json:"type"`
	Icon   string       `json:"icon"`
	Color  string       `json:"color"`

	// Relationships
	Transactions []Transaction          `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
	Budgets      []Budget               `gorm:"foreignKey:CategoryID" json:"budgets,omitempty"`
	Recurring    []RecurringTransaction `gorm:"foreignKey:CategoryID" json:"recurring,omitempty"`
}
