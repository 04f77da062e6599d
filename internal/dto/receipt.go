package dto

import (
	"expense-tracker/internal/models"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type ExpenseItemDTO struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ExpenseItemRequest accepts the price as a JSON number or a numeric string.
type ExpenseItemRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type ExpenseDataResponse struct {
	Amount       *float64         `json:"amount"`
	Category     string           `json:"category"`
	Merchant     *string          `json:"merchant"`
	Date         *string          `json:"date"`
	Items        []ExpenseItemDTO `json:"items"`
	ParseWarning string           `json:"parseWarning,omitempty"`
}

type ExtractReceiptResponse struct {
	Success          bool                `json:"success"`
	Message          string              `json:"message"`
	ProcessingMethod string              `json:"processingMethod"`
	ExtractedText    string              `json:"extractedText"`
	ExpenseData      ExpenseDataResponse `json:"expenseData"`
	Confidence       string              `json:"confidence"`
}

// AddExpenseFromReceiptRequest is the user-confirmed payload of an extraction.
// Amount may arrive as a number or as the edited form string.
// Date accepts YYYY-MM-DD or RFC3339 and defaults to today.
type AddExpenseFromReceiptRequest struct {
	Amount   decimal.Decimal      `json:"amount"`
	Category string               `json:"category"`
	Merchant string               `json:"merchant"`
	Date     string               `json:"date"`
	Items    []ExpenseItemRequest `json:"items"`
}

type AddExpenseResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Expense ExpenseResponse `json:"expense"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewExtractReceiptResponse(result *models.ExtractionResult) ExtractReceiptResponse {
	return ExtractReceiptResponse{
		Success:          true,
		Message:          "Receipt processed successfully",
		ProcessingMethod: result.ProcessingMethod,
		ExtractedText:    result.ExtractedText,
		ExpenseData:      NewExpenseDataResponse(result.ExpenseData),
		Confidence:       result.Confidence,
	}
}

func NewExpenseDataResponse(data models.ExtractedExpenseData) ExpenseDataResponse {
	resp := ExpenseDataResponse{
		Category:     data.Category,
		Items:        NewItemDTOs(data.Items),
		ParseWarning: data.ParseWarning,
	}
	if data.Amount != nil {
		amount := data.Amount.InexactFloat64()
		resp.Amount = &amount
	}
	if data.Merchant != "" {
		merchant := data.Merchant
		resp.Merchant = &merchant
	}
	if data.Date != nil {
		date := data.Date.Format(dateLayout)
		resp.Date = &date
	}
	return resp
}

func NewExpenseItems(items []ExpenseItemRequest) []models.ExpenseItem {
	out := make([]models.ExpenseItem, 0, len(items))
	for _, it := range items {
		out = append(out, models.ExpenseItem{Name: it.Name, Price: it.Price})
	}
	return out
}

func NewItemDTOs(items []models.ExpenseItem) []ExpenseItemDTO {
	out := make([]ExpenseItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, ExpenseItemDTO{Name: it.Name, Price: it.Price.InexactFloat64()})
	}
	return out
}
