package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "smartwallet/internal/errors"
	"smartwallet/internal/models"
	"smartwallet/internal/pagination"
)

// defaultCategories are seeded for a new user on demand.
var defaultCategories = []models.Category{
	{Name: "Food & Dining", Type: models.CategoryTypeExpense, Icon: "🍔", Color: "#ef4444"},
	{Name: "Transportation", Type: models.CategoryTypeExpense, Icon: "🚗", Color: "#f97316"},
	{Name: "Shopping", Type: models.CategoryTypeExpense, Icon: "🛒", Color: "#eab308"},
	{Name: "Entertainment", Type: models.CategoryTypeExpense, Icon: "🎬", Color: "#84cc16"},
	{Name: "Bills & Utilities", Type: models.CategoryTypeExpense, Icon: "💡", Color: "#22c55e"},
	{Name: "Health", Type: models.CategoryTypeExpense, Icon: "🏥", Color: "#14b8a6"},
	{Name: "Education", Type: models.CategoryTypeExpense, Icon: "📚", Color: "#06b6d4"},
	{Name: "Other Expense", Type: models.CategoryTypeExpense, Icon: "📦", Color: "#6b7280"},
	{Name: "Salary", Type: models.CategoryTypeIncome, Icon: "💰", Color: "#10b981"},
	{Name: "Freelance", Type: models.CategoryTypeIncome, Icon: "💻", Color: "#3b82f6"},
	{Name: "Investments", Type: models.CategoryTypeIncome, Icon: "📈", Color: "#8b5cf6"},
	{Name: "Other Income", Type: models.CategoryTypeIncome, Icon: "🎁", Color: "#a855f7"},
}

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(
	userID uint,
	name string,
	categoryType models.CategoryType,
	icon string,
	color string,
) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	// Category names are unique per user
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category with this name already exists")
	}

	category := &models.Category{
		UserID: userID,
		Name:   name,
		Type:   categoryType,
		Icon:   icon,
		Color:  color,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetUserCategories retrieves a paginated list of categories for a user,
// optionally filtered by type.
func (s *categoryService) GetUserCategories(userID uint, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{}).Where("user_id = ?", userID)
	if categoryType != nil {
		base = base.Where("type = ?", *categoryType)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(userID, categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates an existing category
func (s *categoryService) UpdateCategory(
	userID, categoryID uint,
	name, icon, color string,
) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if icon != "" {
		updates["icon"] = icon
	}
	if color != "" {
		updates["color"] = color
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return category, nil
}

// SeedDefaults inserts the stock categories the user does not already
// have. Safe to call repeatedly; returns only the newly created ones.
func (s *categoryService) SeedDefaults(userID uint) ([]models.Category, error) {
	created := []models.Category{}

	for _, def := range defaultCategories {
		var count int64
		if err := s.db.Model(&models.Category{}).
			Where("user_id = ? AND name = ?", userID, def.Name).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			continue
		}

		category := models.Category{
			UserID: userID,
			Name:   def.Name,
			Type:   def.Type,
			Icon:   def.Icon,
			Color:  def.Color,
		}
		if err := s.db.Create(&category).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		created = append(created, category)
	}

	return created, nil
}
