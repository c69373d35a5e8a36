package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "smartwallet/internal/errors"
	"smartwallet/internal/models"
	"smartwallet/internal/pagination"
	"smartwallet/internal/services"
)

// RecurringHandler handles recurring-transaction requests.
type RecurringHandler struct {
	recurringService services.RecurringServicer
	auditService     services.AuditServicer
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurringService services.RecurringServicer, auditService services.AuditServicer) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService, auditService: auditService}
}

// CreateRecurringRequest represents the request payload for creating a recurring rule.
type CreateRecurringRequest struct {
	CategoryID  uint                   `json:"category_id" binding:"required"`
	Type        models.TransactionType `json:"type" binding:"required,transaction_type"`
	Amount      float64                `json:"amount" binding:"required,gt=0"`
	Description string                 `json:"description" binding:"max=255"`
	Frequency   models.Frequency       `json:"frequency" binding:"required,frequency"`
	StartDate   *time.Time             `json:"start_date"`
	EndDate     *time.Time             `json:"end_date"`
}

// UpdateRecurringRequest represents the request payload for updating a recurring rule.
type UpdateRecurringRequest struct {
	Amount       *float64                `json:"amount" binding:"omitempty,gt=0"`
	Description  *string                 `json:"description" binding:"omitempty,max=255"`
	Type         *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	CategoryID   *uint                   `json:"category_id"`
	Frequency    *models.Frequency       `json:"frequency" binding:"omitempty,frequency"`
	EndDate      *time.Time              `json:"end_date"`
	ClearEndDate bool                    `json:"clear_end_date"`
	IsActive     *bool                   `json:"is_active"`
}

// CreateRecurring handles the creation of a new recurring rule.
// @Summary     Create a recurring transaction
// @Description Create a recurring transaction rule that generates transactions on a schedule
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateRecurringRequest true "Recurring rule details"
// @Success     201 {object} models.RecurringTransaction "Recurring rule created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring [post]
func (h *RecurringHandler) CreateRecurring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	startDate := time.Time{}
	if req.StartDate != nil {
		startDate = *req.StartDate
	}

	rule, err := h.recurringService.CreateRecurring(
		userID, req.CategoryID, req.Type, req.Amount, req.Description, req.Frequency, startDate, req.EndDate,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_RECURRING", "recurring_transaction", rule.ID, c.ClientIP(),
		map[string]interface{}{"frequency": req.Frequency, "amount": req.Amount})

	c.JSON(http.StatusCreated, gin.H{"recurring_transaction": rule})
}

// GetRecurring handles listing recurring rules for the authenticated user.
// @Summary     Get recurring transactions
// @Description Get a paginated list of the user's recurring rules ordered by next occurrence
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.RecurringTransaction] "Paginated recurring rules"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring [get]
func (h *RecurringHandler) GetRecurring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.recurringService.GetUserRecurring(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRecurringByID handles retrieving a specific recurring rule.
// @Summary     Get recurring transaction by ID
// @Description Get a specific recurring rule by ID
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Recurring rule ID"
// @Success     200 {object} models.RecurringTransaction "Recurring rule details"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Recurring rule not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id} [get]
func (h *RecurringHandler) GetRecurringByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rule, err := h.recurringService.GetRecurringByID(userID, ruleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_transaction": rule})
}

// UpdateRecurring handles updating an existing recurring rule.
// @Summary     Update recurring transaction
// @Description Update an existing recurring rule
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                    true "Recurring rule ID"
// @Param       request body UpdateRecurringRequest true "Updated rule details"
// @Success     200 {object} models.RecurringTransaction "Updated recurring rule"
// @Failure     400 {object} ErrorResponse "Invalid input or ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Recurring rule not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id} [put]
func (h *RecurringHandler) UpdateRecurring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	rule, err := h.recurringService.UpdateRecurring(
		userID, ruleID, req.Amount, req.Description, req.Type, req.CategoryID,
		req.Frequency, req.EndDate, req.ClearEndDate, req.IsActive,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_RECURRING", "recurring_transaction", ruleID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"recurring_transaction": rule})
}

// DeleteRecurring handles deleting a recurring rule.
// @Summary     Delete recurring transaction
// @Description Delete a recurring rule by ID (soft delete); generated transactions are kept
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Recurring rule ID"
// @Success     200 {object} MessageResponse "Recurring rule deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Recurring rule not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id} [delete]
func (h *RecurringHandler) DeleteRecurring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringService.DeleteRecurring(userID, ruleID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_RECURRING", "recurring_transaction", ruleID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Recurring transaction deleted successfully"})
}

// GetUpcoming handles listing rules due within the next 30 days.
// @Summary     Get upcoming recurring transactions
// @Description Get active recurring rules whose next occurrence falls within the next 30 days
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.RecurringTransaction "Upcoming recurring rules"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/upcoming [get]
func (h *RecurringHandler) GetUpcoming(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rules, err := h.recurringService.Upcoming(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"upcoming": rules})
}

// ProcessDue handles materializing all due recurring transactions.
// @Summary     Process due recurring transactions
// @Description Generate transactions for every active rule whose next date has passed, catching up missed occurrences
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.ProcessResult "Processing result"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/process [post]
func (h *RecurringHandler) ProcessDue(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.recurringService.ProcessDue(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "PROCESS_RECURRING", "recurring_transaction", 0, c.ClientIP(),
		map[string]interface{}{"processed": result.ProcessedCount, "generated": len(result.Generated)})

	c.JSON(http.StatusOK, result)
}

// SkipNext handles skipping a rule's next occurrence.
// @Summary     Skip next occurrence
// @Description Advance a recurring rule's next date by one step without generating a transaction
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Recurring rule ID"
// @Success     200 {object} models.RecurringTransaction "Updated recurring rule"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Recurring rule not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id}/skip [post]
func (h *RecurringHandler) SkipNext(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rule, err := h.recurringService.SkipNext(userID, ruleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SKIP_RECURRING", "recurring_transaction", ruleID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"recurring_transaction": rule})
}
