package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"expense-tracker/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var expenseColumns = []string{
	"id", "user_id", "icon", "amount", "category", "date", "source", "merchant", "items", "created_at",
}

type ExpenseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewExpenseRepository(db *sql.DB, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *models.Expense) error {
	items := e.Items
	if items == nil {
		items = []models.ExpenseItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	query := squirrel.Insert("expenses").
		Columns(expenseColumns...).
		Values(e.ID, e.UserID, e.Icon, e.Amount, e.Category, e.Date, string(e.Source), e.Merchant, string(itemsJSON), e.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		r.logger.Error("Failed to insert expense", zap.String("expense_id", e.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// ListByUserID returns the user's expenses, most recent date first.
func (r *ExpenseRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Expense, error) {
	query := squirrel.Select(expenseColumns...).
		From("expenses").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date DESC", "created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		var (
			e      models.Expense
			source string
			items  []byte
		)
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Icon, &e.Amount, &e.Category, &e.Date, &source, &e.Merchant, &items, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Source = models.ExpenseSource(source)
		if len(items) > 0 {
			if err := json.Unmarshal(items, &e.Items); err != nil {
				return nil, fmt.Errorf("failed to decode items of expense %s: %w", e.ID, err)
			}
		}
		expenses = append(expenses, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return expenses, nil
}
