package dto

import (
	"time"

	"expense-tracker/internal/models"

	"github.com/shopspring/decimal"
)

type CreateExpenseRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Merchant string          `json:"merchant"`
	Icon     string          `json:"icon"`
}

type ExpenseResponse struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Icon      string           `json:"icon"`
	Amount    float64          `json:"amount"`
	Category  string           `json:"category"`
	Date      string           `json:"date"`
	Source    string           `json:"source"`
	Merchant  string           `json:"merchant"`
	Items     []ExpenseItemDTO `json:"items"`
	CreatedAt string           `json:"createdAt"`
}

func NewExpenseResponse(e *models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:        e.ID.String(),
		UserID:    e.UserID.String(),
		Icon:      e.Icon,
		Amount:    e.Amount.InexactFloat64(),
		Category:  e.Category,
		Date:      e.Date.Format(dateLayout),
		Source:    string(e.Source),
		Merchant:  e.Merchant,
		Items:     NewItemDTOs(e.Items),
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

func NewExpenseResponses(expenses []*models.Expense) []ExpenseResponse {
	out := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, NewExpenseResponse(e))
	}
	return out
}
