package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExpenseSource string

const (
	SourceManual  ExpenseSource = "manual"
	SourceReceipt ExpenseSource = "receipt"
)

const (
	CategoryFood           = "Food"
	CategoryGroceries      = "Groceries"
	CategoryTransportation = "Transportation"
	CategoryShopping       = "Shopping"
	CategoryHealthcare     = "Healthcare"
	CategoryEntertainment  = "Entertainment"
	CategoryUtilities      = "Utilities"
	CategoryOther          = "Other"
)

const (
	DefaultMerchant = "Unknown"
	ReceiptIcon     = "receipt"
)

type ExpenseItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type Expense struct {
	ID        uuid.UUID       `db:"id"`
	UserID    uuid.UUID       `db:"user_id"`
	Icon      string          `db:"icon"`
	Amount    decimal.Decimal `db:"amount"`
	Category  string          `db:"category"`
	Date      time.Time       `db:"date"`
	Source    ExpenseSource   `db:"source"`
	Merchant  string          `db:"merchant"`
	Items     []ExpenseItem   `db:"items"`
	CreatedAt time.Time       `db:"created_at"`
}
