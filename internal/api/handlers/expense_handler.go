package handlers

import (
	"context"
	"errors"

	"expense-tracker/internal/dto"
	"expense-tracker/internal/models"
	"expense-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExpenseService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*models.Expense, error)
	Add(ctx context.Context, userID uuid.UUID, input service.ManualExpenseInput) (*models.Expense, error)
	ExportXLSX(ctx context.Context, userID uuid.UUID) ([]byte, error)
}

type ExpenseHandler struct {
	expenseService ExpenseService
	logger         *zap.Logger
}

func NewExpenseHandler(expenseService ExpenseService, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		logger:         logger,
	}
}

// ListExpenses godoc
// @Summary List the user's expenses
// @Tags expenses
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.ExpenseResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) ListExpenses(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Not authorized")
	}

	expenses, err := h.expenseService.List(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list expenses", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to list expenses")
	}

	return c.JSON(dto.NewExpenseResponses(expenses))
}

// AddExpense godoc
// @Summary Add a manual expense
// @Tags expenses
// @Accept json
// @Produce json
// @Param request body dto.CreateExpenseRequest true "Expense"
// @Security Bearer
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) AddExpense(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Not authorized")
	}

	var req dto.CreateExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	expense, err := h.expenseService.Add(c.Context(), userID, service.ManualExpenseInput{
		Amount:   req.Amount,
		Category: req.Category,
		Date:     req.Date,
		Merchant: req.Merchant,
		Icon:     req.Icon,
	})
	if err != nil {
		var re *service.ReceiptError
		if errors.As(err, &re) {
			return errorJSON(c, statusForCode(re.Code), re.Message)
		}
		h.logger.Error("Failed to add expense", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to add expense")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewExpenseResponse(expense))
}

// ExportExpenses godoc
// @Summary Download expenses as an Excel workbook
// @Tags expenses
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security Bearer
// @Success 200 {file} file
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/expenses/export [get]
func (h *ExpenseHandler) ExportExpenses(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Not authorized")
	}

	data, err := h.expenseService.ExportXLSX(c.Context(), userID)
	if errors.Is(err, service.ErrNoExpenses) {
		return errorJSON(c, fiber.StatusNotFound, "No expenses to export")
	}
	if err != nil {
		h.logger.Error("Failed to export expenses", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to export expenses")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Attachment("expense_details.xlsx")
	return c.Send(data)
}
