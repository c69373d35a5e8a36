package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "smartwallet/internal/errors"
	"smartwallet/internal/logger"
	"smartwallet/internal/models"
	"smartwallet/internal/pagination"
	"smartwallet/internal/schedule"
)

// maxOccurrencesPerRun bounds catch-up generation for a single rule in
// one scheduler pass. A healthy rule never comes close; hitting the cap
// means next_date is corrupt and the rule is aborted instead of looping.
const maxOccurrencesPerRun = 1000

// upcomingWindow is how far ahead Upcoming looks for due rules.
const upcomingWindow = 30 * 24 * time.Hour

// recurringService handles recurring-transaction business logic,
// including the scheduler that materializes due occurrences.
type recurringService struct {
	db *gorm.DB
}

// NewRecurringService creates a new RecurringServicer.
func NewRecurringService(db *gorm.DB) RecurringServicer {
	return &recurringService{db: db}
}

// CreateRecurring creates a new recurring transaction rule. NextDate is
// seeded from the start date, which defaults to now.
func (s *recurringService) CreateRecurring(
	userID, categoryID uint,
	transactionType models.TransactionType,
	amount float64,
	description string,
	frequency models.Frequency,
	startDate time.Time,
	endDate *time.Time,
) (*models.RecurringTransaction, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if startDate.IsZero() {
		startDate = time.Now()
	}

	rule := &models.RecurringTransaction{
		UserID:      userID,
		CategoryID:  categoryID,
		Type:        transactionType,
		Amount:      amount,
		Description: description,
		Frequency:   frequency,
		StartDate:   startDate,
		NextDate:    startDate,
		EndDate:     endDate,
		IsActive:    true,
	}

	if err := s.db.Create(rule).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Preload("Category").First(rule, rule.ID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rule, nil
}

// GetUserRecurring returns a paginated list of the user's recurring rules
// ordered by next occurrence.
func (s *recurringService) GetUserRecurring(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.RecurringTransaction], error) {
	page.Defaults()

	base := s.db.Model(&models.RecurringTransaction{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rules []models.RecurringTransaction
	if err := base.Preload("Category").Scopes(pagination.Paginate(page)).
		Order("next_date ASC").
		Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(rules, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetRecurringByID returns a recurring rule by ID if it belongs to the user.
func (s *recurringService) GetRecurringByID(userID, ruleID uint) (*models.RecurringTransaction, error) {
	var rule models.RecurringTransaction
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", ruleID, userID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rule, nil
}

// UpdateRecurring updates an existing rule's fields. Passing clearEndDate
// removes the end date; isActive can reactivate an exhausted rule.
func (s *recurringService) UpdateRecurring(
	userID, ruleID uint,
	amount *float64,
	description *string,
	transactionType *models.TransactionType,
	categoryID *uint,
	frequency *models.Frequency,
	endDate *time.Time,
	clearEndDate bool,
	isActive *bool,
) (*models.RecurringTransaction, error) {
	rule, err := s.GetRecurringByID(userID, ruleID)
	if err != nil {
		return nil, err
	}

	if amount != nil && *amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	if categoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ? AND user_id = ?", *categoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	updates := make(map[string]interface{})
	if amount != nil {
		updates["amount"] = *amount
	}
	if description != nil {
		updates["description"] = *description
	}
	if transactionType != nil {
		updates["type"] = *transactionType
	}
	if categoryID != nil {
		updates["category_id"] = *categoryID
	}
	if frequency != nil {
		updates["frequency"] = *frequency
	}
	if clearEndDate {
		updates["end_date"] = nil
	} else if endDate != nil {
		updates["end_date"] = endDate
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(rule).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetRecurringByID(userID, ruleID)
}

// DeleteRecurring soft-deletes a recurring rule.
func (s *recurringService) DeleteRecurring(userID, ruleID uint) error {
	rule, err := s.GetRecurringByID(userID, ruleID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(rule).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Upcoming returns the user's active rules due within the next 30 days.
func (s *recurringService) Upcoming(userID uint, now time.Time) ([]models.RecurringTransaction, error) {
	var rules []models.RecurringTransaction
	if err := s.db.Preload("Category").
		Where("user_id = ? AND is_active = ? AND next_date >= ? AND next_date <= ?",
			userID, true, now, now.Add(upcomingWindow)).
		Order("next_date ASC").
		Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rules, nil
}

// ProcessDue materializes every missed occurrence of the user's due rules
// up to now. Each rule is processed in its own database transaction:
// a failure rolls back and reports that rule only, leaving siblings and
// the rule's own next_date untouched so a retry is safe. Running it again
// with the same now is a no-op because next_date has advanced past now.
func (s *recurringService) ProcessDue(userID uint, now time.Time) (*ProcessResult, error) {
	var due []models.RecurringTransaction
	if err := s.db.
		Where("user_id = ? AND is_active = ? AND next_date <= ? AND (end_date IS NULL OR end_date >= ?)",
			userID, true, now, now).
		Find(&due).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &ProcessResult{
		ProcessedCount: len(due),
		Generated:      []models.Transaction{},
	}

	for i := range due {
		generated, err := s.processRule(&due[i], now)
		if err != nil {
			logger.Get().Errorw("failed to process recurring rule",
				"rule_id", due[i].ID,
				"user_id", userID,
				"error", err,
			)
			result.Failed = append(result.Failed, RuleFailure{RuleID: due[i].ID, Error: err.Error()})
			continue
		}
		result.Generated = append(result.Generated, generated...)
	}

	return result, nil
}

// processRule walks the rule's schedule from next_date up to the now and
// end-date ceilings, creating one transaction per occurrence in strictly
// increasing date order. The final update is guarded on the next_date the
// walk started from: if a concurrent pass already advanced the rule, the
// whole transaction rolls back rather than double-generating.
func (s *recurringService) processRule(rule *models.RecurringTransaction, now time.Time) ([]models.Transaction, error) {
	var generated []models.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		cursor := rule.NextDate
		for !cursor.After(now) {
			if rule.EndDate != nil && cursor.After(*rule.EndDate) {
				break
			}
			if len(generated) >= maxOccurrencesPerRun {
				return apperrors.Wrap(apperrors.ErrScheduleRunaway,
					fmt.Errorf("rule %d exceeded %d occurrences in one run", rule.ID, maxOccurrencesPerRun))
			}

			occurrence := models.Transaction{
				UserID:      rule.UserID,
				CategoryID:  rule.CategoryID,
				Type:        rule.Type,
				Amount:      rule.Amount,
				Description: occurrenceDescription(rule),
				Date:        cursor,
			}
			if err := tx.Create(&occurrence).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			generated = append(generated, occurrence)

			cursor = schedule.NextDate(cursor, rule.Frequency)
		}

		updates := map[string]interface{}{
			"next_date":      cursor,
			"last_processed": now,
		}
		if rule.EndDate != nil && cursor.After(*rule.EndDate) {
			updates["is_active"] = false
		}

		res := tx.Model(&models.RecurringTransaction{}).
			Where("id = ? AND next_date = ?", rule.ID, rule.NextDate).
			Updates(updates)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.WithMessage(apperrors.ErrInternalServer, "recurring rule was modified concurrently")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return generated, nil
}

// occurrenceDescription derives the generated transaction's description
// from the rule, marking its recurring origin.
func occurrenceDescription(rule *models.RecurringTransaction) string {
	if rule.Description != "" {
		return rule.Description + " (Recurring)"
	}
	return "Recurring " + string(rule.Type)
}

// SkipNext advances a rule's next_date by one step without generating a
// transaction. IsActive and last_processed are left untouched.
func (s *recurringService) SkipNext(userID, ruleID uint) (*models.RecurringTransaction, error) {
	rule, err := s.GetRecurringByID(userID, ruleID)
	if err != nil {
		return nil, err
	}

	newNext := schedule.NextDate(rule.NextDate, rule.Frequency)

	res := s.db.Model(&models.RecurringTransaction{}).
		Where("id = ? AND next_date = ?", rule.ID, rule.NextDate).
		Update("next_date", newNext)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInternalServer, "recurring rule was modified concurrently")
	}

	return s.GetRecurringByID(userID, ruleID)
}
