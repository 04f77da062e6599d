package service

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"expense-tracker/internal/models"

	"github.com/shopspring/decimal"
)

const (
	MissingAmountWarning = "Could not automatically detect the total amount. Please enter it manually."

	merchantScanLines = 5
	maxItems          = 20
)

var (
	maxAmount    = decimal.NewFromInt(10000)
	maxItemPrice = decimal.NewFromInt(1000)
)

// moneyValue matches 12.50, 12,50 and 1,234.56.
const moneyValue = `(\d{1,3}(?:,\d{3})+\.\d{2}|\d+[.,]\d{2})`

type amountRule struct {
	pattern  *regexp.Regexp
	priority int
	// rejectGroup, when non-zero, discards matches in which that group participated.
	rejectGroup int
}

// Ordered from most to least specific label. All rules run over the
// lower-cased text and every match becomes a candidate.
var amountRules = []amountRule{
	{
		pattern:     regexp.MustCompile(`(sub\s*-?\s*)?(?:grand\s*total|final\s*total|total|amount\s*due|balance\s*due)[:\s]*\$?\s*` + moneyValue),
		priority:    4,
		rejectGroup: 1,
	},
	{
		pattern:  regexp.MustCompile(`sub\s*-?\s*total[:\s]*\$?\s*` + moneyValue),
		priority: 3,
	},
	{
		pattern:  regexp.MustCompile(`\b(?:amount|sum|charge)[:\s]*\$?\s*` + moneyValue),
		priority: 2,
	},
	{
		pattern:  regexp.MustCompile(`\$\s*` + moneyValue),
		priority: 1,
	},
	{
		pattern:  regexp.MustCompile(moneyValue),
		priority: 0,
	},
}

type dateRule struct {
	pattern *regexp.Regexp
	layouts []string
}

const monthName = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?`

var dateRules = []dateRule{
	{regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{4})\b`), []string{"1/2/2006"}},
	{regexp.MustCompile(`\b(\d{4}[/-]\d{1,2}[/-]\d{1,2})\b`), []string{"2006/1/2"}},
	{regexp.MustCompile(`(?i)\b(` + monthName + `\s+\d{1,2},?\s+\d{4})\b`), []string{"Jan 2 2006"}},
	{regexp.MustCompile(`(?i)\b(\d{1,2}\s+` + monthName + `,?\s+\d{4})\b`), []string{"2 Jan 2006"}},
	{regexp.MustCompile(`(?i)date[:\s]+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`), []string{"1/2/2006", "1/2/06"}},
	{regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\s+\d{1,2}:\d{2}`), []string{"1/2/2006", "1/2/06"}},
}

var (
	merchantRules = []*regexp.Regexp{
		regexp.MustCompile(`^([A-Z][A-Z\s&'.,-]+[A-Z])$`),
		regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*(?:\s+(?:Inc|LLC|Corp|Co|Ltd)\.?)?)$`),
		regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+(?:Store|Market|Shop|Restaurant|Cafe))$`),
	}
	numericDate = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
)

type categoryRule struct {
	category string
	keywords []string
}

// Checked in order; the first category with any keyword hit wins.
var categoryRules = []categoryRule{
	{models.CategoryFood, []string{
		"restaurant", "cafe", "pizza", "burger", "dining", "food", "kitchen", "grill", "bar",
		"mcdonald", "subway", "starbucks", "kfc", "domino", "taco", "wendy", "chipotle",
		"buffet", "dine", "eatery", "bistro", "deli", "bakery", "coffee", "tea",
	}},
	{models.CategoryGroceries, []string{
		"grocery", "supermarket", "market", "walmart", "target", "costco", "store", "mart",
		"kroger", "safeway", "whole foods", "trader joe", "aldi", "publix", "food lion",
		"harris teeter", "giant", "stop shop", "wegmans", "heb", "meijer",
	}},
	{models.CategoryTransportation, []string{
		"gas", "fuel", "uber", "lyft", "taxi", "parking", "metro", "bus", "train", "subway",
		"shell", "exxon", "bp", "chevron", "mobil", "citgo", "speedway", "marathon",
		"transportation", "transit", "toll", "garage",
	}},
	{models.CategoryShopping, []string{
		"mall", "shop", "retail", "clothing", "fashion", "electronics", "amazon", "ebay",
		"best buy", "apple", "nike", "adidas", "zara", "hm", "forever 21", "gap",
		"old navy", "tj maxx", "marshalls", "nordstrom", "macys", "kohls",
	}},
	{models.CategoryHealthcare, []string{
		"pharmacy", "hospital", "clinic", "medical", "doctor", "health", "cvs", "walgreens",
		"rite aid", "urgent care", "dental", "vision", "therapy", "medicine", "prescription",
	}},
	{models.CategoryEntertainment, []string{
		"cinema", "movie", "theater", "theatre", "game", "sport", "gym", "fitness", "netflix",
		"spotify", "youtube", "entertainment", "club", "concert", "show", "amusement",
	}},
	{models.CategoryUtilities, []string{
		"electric", "electricity", "gas bill", "water", "internet", "phone", "cable",
		"utility", "verizon", "att", "comcast", "spectrum", "tmobile", "sprint",
	}},
}

type itemRule struct {
	pattern    *regexp.Regexp
	nameGroup  int
	priceGroup int
}

const itemName = `([A-Za-z][A-Za-z \t\d\-.]*?)`

var itemRules = []itemRule{
	{regexp.MustCompile(`^` + itemName + `[ \t]+\$?(\d+[.,]\d{2})$`), 1, 2},
	{regexp.MustCompile(`^(\d+)[ \t]+` + itemName + `[ \t]+\$?(\d+[.,]\d{2})$`), 2, 3},
	{regexp.MustCompile(`^` + itemName + `[ \t]+@[ \t]+\$?(\d+[.,]\d{2})$`), 1, 2},
}

// Summary lines look like items but are never purchased goods.
var summaryLine = regexp.MustCompile(`(?i)^(?:sub\s*-?\s*total|grand\s*total|total|tax|balance|amount\s*due|change|cash)\b`)

type amountCandidate struct {
	amount   decimal.Decimal
	priority int
}

// ParseReceiptText recovers expense fields from raw receipt text. Each field is
// extracted independently; a missing field never prevents the others.
func ParseReceiptText(text string) models.ExtractedExpenseData {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := nonEmptyLines(text)

	data := models.ExtractedExpenseData{
		Category: models.CategoryOther,
		Items:    []models.ExpenseItem{},
	}

	data.Merchant = extractMerchant(lines)

	if amount, ok := extractAmount(text); ok {
		data.Amount = &amount
	} else {
		data.ParseWarning = MissingAmountWarning
	}

	if date, ok := extractDate(text); ok {
		data.Date = &date
	}

	data.Category = inferCategory(data.Merchant, text)
	data.Items = extractItems(lines)

	return data
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func extractAmount(text string) (decimal.Decimal, bool) {
	lower := strings.ToLower(text)

	var candidates []amountCandidate
	for _, rule := range amountRules {
		for _, m := range rule.pattern.FindAllStringSubmatch(lower, -1) {
			if rule.rejectGroup > 0 && m[rule.rejectGroup] != "" {
				continue
			}
			amount, ok := parseMoney(m[len(m)-1])
			if !ok || !amount.IsPositive() || !amount.LessThan(maxAmount) {
				continue
			}
			candidates = append(candidates, amountCandidate{amount: amount, priority: rule.priority})
		}
	}
	if len(candidates) == 0 {
		return decimal.Zero, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority > candidates[j].priority
		}
		return candidates[i].amount.GreaterThan(candidates[j].amount)
	})
	return candidates[0].amount, true
}

// parseMoney reads a matched money value, treating a lone comma as the decimal separator.
func parseMoney(s string) (decimal.Decimal, bool) {
	if strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", "")
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func extractDate(text string) (time.Time, bool) {
	for _, rule := range dateRules {
		m := rule.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if t, ok := parseDate(m[1], rule.layouts); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseDate(raw string, layouts []string) (time.Time, bool) {
	cleaned := strings.NewReplacer("-", "/", ",", "", ".", "").Replace(raw)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	cleaned = shortenMonth(cleaned)

	for _, layout := range layouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, true
		}
	}
	return reconstructMDY(raw)
}

// shortenMonth cuts written month names to three letters so "Sept" and
// "September" both parse with the "Jan" layout.
func shortenMonth(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		if len(f) > 3 && isLetters(f) {
			fields[i] = f[:3]
		}
	}
	return strings.Join(fields, " ")
}

func isLetters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// reconstructMDY rebuilds a month/day/year date from three numeric parts.
func reconstructMDY(raw string) (time.Time, bool) {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 {
		return time.Time{}, false
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}
	month, day, year := nums[0], nums[1], nums[2]
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || year < 1900 || year > 2100 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func extractMerchant(lines []string) string {
	limit := len(lines)
	if limit > merchantScanLines {
		limit = merchantScanLines
	}

	for _, line := range lines[:limit] {
		for _, rule := range merchantRules {
			m := rule.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if name := strings.TrimSpace(m[1]); merchantLengthOK(name) {
				return name
			}
		}
	}

	if len(lines) > 0 && merchantLengthOK(lines[0]) && !numericDate.MatchString(lines[0]) {
		return lines[0]
	}
	return ""
}

func merchantLengthOK(s string) bool {
	n := utf8.RuneCountInString(s)
	return n > 2 && n < 50
}

func inferCategory(merchant, text string) string {
	haystack := strings.ToLower(merchant + " " + text)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return rule.category
			}
		}
	}
	return models.CategoryOther
}

func extractItems(lines []string) []models.ExpenseItem {
	items := []models.ExpenseItem{}
	seen := make(map[string]struct{})

	for _, rule := range itemRules {
		for _, line := range lines {
			if len(items) == maxItems {
				return items
			}
			m := rule.pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}

			name := strings.TrimSpace(m[rule.nameGroup])
			if n := utf8.RuneCountInString(name); n < 3 || n > 49 || summaryLine.MatchString(name) {
				continue
			}
			price, ok := parseMoney(m[rule.priceGroup])
			if !ok || !price.IsPositive() || !price.LessThan(maxItemPrice) {
				continue
			}

			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			items = append(items, models.ExpenseItem{Name: name, Price: price})
		}
	}
	return items
}
