package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"expense-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheet = "Expenses"

// ManualExpenseInput is an expense typed in by the user.
type ManualExpenseInput struct {
	Amount   decimal.Decimal
	Category string
	Date     string
	Merchant string
	Icon     string
}

type ExpenseService struct {
	expenses ExpenseStore
	logger   *zap.Logger
	now      func() time.Time
}

func NewExpenseService(expenses ExpenseStore, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		expenses: expenses,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ExpenseService) List(ctx context.Context, userID uuid.UUID) ([]*models.Expense, error) {
	expenses, err := s.expenses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

func (s *ExpenseService) Add(ctx context.Context, userID uuid.UUID, input ManualExpenseInput) (*models.Expense, error) {
	if !input.Amount.IsPositive() {
		return nil, NewValidationError(msgInvalidAmount, ErrInvalidAmount)
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, NewValidationError("Category is required", errors.New("empty category"))
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(input.Date))
	if err != nil {
		return nil, NewValidationError("Invalid date format. Use YYYY-MM-DD.", fmt.Errorf("%w: %q", ErrInvalidDate, input.Date))
	}

	expense := &models.Expense{
		ID:        uuid.New(),
		UserID:    userID,
		Icon:      input.Icon,
		Amount:    input.Amount.Round(2),
		Category:  category,
		Date:      date,
		Source:    models.SourceManual,
		Merchant:  strings.TrimSpace(input.Merchant),
		Items:     []models.ExpenseItem{},
		CreatedAt: s.now().UTC(),
	}

	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to add expense: %w", err)
	}

	s.logger.Info("Expense added",
		zap.String("expense_id", expense.ID.String()),
		zap.String("user_id", userID.String()),
	)
	return expense, nil
}

// ExportXLSX renders the user's expenses as a single-sheet workbook.
func (s *ExpenseService) ExportXLSX(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	expenses, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, ErrNoExpenses
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &[]interface{}{"Amount", "Category", "Date", "Source", "Merchant"}); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, e := range expenses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			e.Amount.InexactFloat64(),
			e.Category,
			e.Date.Format("2006-01-02"),
			string(e.Source),
			e.Merchant,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("Expenses exported", zap.String("user_id", userID.String()), zap.Int("rows", len(expenses)))
	return buf.Bytes(), nil
}
