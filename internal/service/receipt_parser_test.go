package service

import (
	"testing"
	"time"

	"expense-tracker/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireAmount(t *testing.T, data models.ExtractedExpenseData, want string) {
	t.Helper()
	require.NotNil(t, data.Amount, "amount not detected")
	assert.True(t, data.Amount.Equal(decimal.RequireFromString(want)), "got amount %s, want %s", data.Amount, want)
}

func TestParseReceiptText_LabelledTotalBeatsBareDollar(t *testing.T) {
	data := ParseReceiptText("CORNER DELI\nSandwich $5.00\nTotal: $42.50\n")
	requireAmount(t, data, "42.50")
	assert.Empty(t, data.ParseWarning)
}

func TestParseReceiptText_LargerAmountWinsOnTie(t *testing.T) {
	data := ParseReceiptText("Amount: $12.00\nAmount: $99.00\n")
	requireAmount(t, data, "99.00")
}

func TestParseReceiptText_NoAmount(t *testing.T) {
	data := ParseReceiptText("THANK YOU FOR VISITING\nsee you soon")
	assert.Nil(t, data.Amount)
	assert.Equal(t, MissingAmountWarning, data.ParseWarning)
}

func TestParseReceiptText_StarbucksMerchantAndCategory(t *testing.T) {
	data := ParseReceiptText("STARBUCKS COFFEE\n123 Main St\nLatte 4.75\nTotal 4.75\n")
	assert.Equal(t, "STARBUCKS COFFEE", data.Merchant)
	assert.Equal(t, models.CategoryFood, data.Category)
}

func TestParseReceiptText_DuplicateItems(t *testing.T) {
	data := ParseReceiptText("Coffee 3.50\nCoffee 3.50\ncoffee 3.50\n")
	require.Len(t, data.Items, 1)
	assert.Equal(t, "Coffee", data.Items[0].Name)
	assert.True(t, data.Items[0].Price.Equal(decimal.RequireFromString("3.50")))
}

func TestParseReceiptText_DefaultCategory(t *testing.T) {
	data := ParseReceiptText("XYZ 123\nqwerty 1.00")
	assert.Equal(t, models.CategoryOther, data.Category)
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"grand total", "Grand Total: 18.20\nCash 20.00", "18.20", true},
		{"subtotal outranks generic", "Subtotal 30.00\nCharge: 50.00", "30.00", true},
		{"total outranks subtotal", "Subtotal: 40.00\nTax 2.00\nTotal: 42.00", "42.00", true},
		{"subtotal is not a total", "Sub-total: 40.00\n$45.00", "40.00", true},
		{"balance due", "BALANCE DUE $ 17.35", "17.35", true},
		{"comma decimal", "TOTAL 12,99", "12.99", true},
		{"thousands separator", "Total: $1,234.56", "1234.56", true},
		{"out of range dropped", "Total: 12000.00\n$8.00", "8.00", true},
		{"bare number fallback", "something 7.25 here", "7.25", true},
		{"zero dropped", "Total: 0.00", "", false},
		{"nothing", "no numbers", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractAmount(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
			}
		})
	}
}

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"us numeric", "Visited 03/15/2024 thanks", "2024-03-15"},
		{"dash numeric", "3-5-2024", "2024-03-05"},
		{"iso-ish", "2024/03/15 12:00", "2024-03-15"},
		{"written month", "March 15, 2024", "2024-03-15"},
		{"abbreviated month", "Sept. 3 2023", "2023-09-03"},
		{"day first month", "15 Mar 2024", "2024-03-15"},
		{"labelled short year", "Date: 03/15/24", "2024-03-15"},
		{"with time", "03/15/24 14:32", "2024-03-15"},
		{"invalid month skipped", "13/45/2024\nJan 2 2024", "2024-01-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractDate(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestExtractDate_None(t *testing.T) {
	_, ok := extractDate("MARKET 12 2024 not a date\n99/99/9999")
	assert.False(t, ok)
}

func TestReconstructMDY(t *testing.T) {
	got, ok := reconstructMDY("2/29/2024")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)

	_, ok = reconstructMDY("2/30/2024")
	assert.False(t, ok)
	_, ok = reconstructMDY("2024/1")
	assert.False(t, ok)
}

func TestExtractMerchant(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"all caps", []string{"WALMART SUPERCENTER", "Store 123"}, "WALMART SUPERCENTER"},
		{"legal suffix", []string{"#0042", "Acme Widgets Inc.", "x"}, "Acme Widgets Inc."},
		{"venue suffix", []string{"12:30", "Blue Bottle Cafe"}, "Blue Bottle Cafe"},
		{"only first five lines", []string{"1", "2", "3", "4", "5", "TARGET"}, ""},
		{"fallback first line", []string{"joe's pizza #12", "tel 555"}, "joe's pizza #12"},
		{"fallback rejects date", []string{"01/02/2024 10:00"}, ""},
		{"too short", []string{"AB"}, ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractMerchant(tt.lines))
		})
	}
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		merchant string
		text     string
		want     string
	}{
		{"KROGER", "milk 2.99", models.CategoryGroceries},
		{"", "uber trip", models.CategoryTransportation},
		{"CVS", "", models.CategoryHealthcare},
		{"", "netflix monthly", models.CategoryEntertainment},
		{"", "comcast", models.CategoryUtilities},
		{"", "nike outlet", models.CategoryShopping},
		{"", "zzz", models.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, inferCategory(tt.merchant, tt.text))
		})
	}
}

func TestExtractItems(t *testing.T) {
	lines := nonEmptyLines("Milk 2.99\n2 Eggs Large 4.50\nBananas @ 0.59\nTotal 8.08\nTV 1200.00\nAb 1.00\nFree Sample 0.00\n")

	items := extractItems(lines)
	require.Len(t, items, 3)
	assert.Equal(t, "Milk", items[0].Name)
	assert.Equal(t, "Eggs Large", items[1].Name)
	assert.True(t, items[1].Price.Equal(decimal.RequireFromString("4.50")))
	assert.Equal(t, "Bananas", items[2].Name)
}

func TestExtractItems_SkipsSummaryLines(t *testing.T) {
	lines := nonEmptyLines("Coffee 3.50\nSubtotal 3.50\nTAX 0.28\nGrand Total 3.78\nCASH 5.00\nCHANGE 1.22\nBalance Due 0.00\nTaxi Voucher 9.00\n")

	items := extractItems(lines)
	require.Len(t, items, 2)
	assert.Equal(t, "Coffee", items[0].Name)
	assert.Equal(t, "Taxi Voucher", items[1].Name)
}

func TestExtractItems_Capped(t *testing.T) {
	var lines []string
	for i := 0; i < 30; i++ {
		lines = append(lines, "Item"+string(rune('A'+i))+" 1.00")
	}
	assert.Len(t, extractItems(lines), maxItems)
}

func TestParseReceiptText_Deterministic(t *testing.T) {
	text := "SAFEWAY\n03/01/2024\nApples 3.20\nBread 2.50\nTOTAL $5.70\n"
	assert.Equal(t, ParseReceiptText(text), ParseReceiptText(text))
}
