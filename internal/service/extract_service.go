package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"receipt-vault/internal/models"

	"go.uber.org/zap"
)

// categoryRule maps a category to its trigger keywords. Rules are kept in a
// slice because evaluation order is the tie-break: the first category with
// any keyword hit wins.
type categoryRule struct {
	category models.Category
	keywords []string
}

var categoryRules = []categoryRule{
	{models.CategoryGrocery, []string{"supermarket", "grocery", "freshco", "whole foods", "costco", "market", "mart", "trader joe", "save on"}},
	{models.CategoryDining, []string{"restaurant", "cafe", "coffee", "tea", "diner", "pizza", "burger", "sushi", "bbq", "kitchen"}},
	{models.CategoryTransport, []string{"uber", "lyft", "taxi", "gas", "fuel", "petro", "shell", "chevron", "parking", "transit"}},
	{models.CategoryHealth, []string{"pharmacy", "drug", "clinic", "hospital", "dental", "health", "medicine"}},
	{models.CategoryShopping, []string{"amazon", "walmart", "target", "store", "shop", "mall", "ikea", "best buy"}},
	{models.CategoryTravel, []string{"hotel", "airbnb", "airlines", "flight", "booking", "expedia"}},
	{models.CategoryUtilities, []string{"hydro", "electric", "internet", "phone", "water", "utility", "telus", "rogers", "bell"}},
}

// dateMatcher is one pattern family of the date cascade. Each family is
// tried in order; within a family only the first occurrence is considered.
type dateMatcher struct {
	re    *regexp.Regexp
	parts func(m []string) (year, month, day string)
}

var dateMatchers = []dateMatcher{
	{
		re:    regexp.MustCompile(`\b(20\d{2})[-/](\d{1,2})[-/](\d{1,2})\b`),
		parts: func(m []string) (string, string, string) { return m[1], m[2], m[3] },
	},
	{
		re:    regexp.MustCompile(`\b(\d{1,2})[-/](\d{1,2})[-/](20\d{2})\b`),
		parts: func(m []string) (string, string, string) { return m[3], m[1], m[2] },
	},
}

// amountMatchers is the amount cascade: a labeled total always beats a bare
// currency-prefixed amount anywhere in the text.
var amountMatchers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:total|amount|sum)\s*[:：]?\s*([$€£¥]?\s?\d+[.,]\d{2})`),
	regexp.MustCompile(`([$€£¥]\s?\d+[.,]\d{2})`),
}

var (
	vendorSkipRe  = regexp.MustCompile(`(?i)receipt|invoice|tax|total|date|thank`)
	itemLineRe    = regexp.MustCompile(`(.+?)\s+([$€£¥]?\d+[.,]\d{2})$`)
	summaryNameRe = regexp.MustCompile(`(?i)total|subtotal|tax|amount|sum`)
)

var currencyByRune = map[rune]string{
	'$': "USD",
	'€': "EUR",
	'£': "GBP",
	'¥': "CNY",
}

// ExtractService turns raw receipt text into structured fields. It is
// stateless and never touches storage; every extractor is a fixed ordered
// cascade with first-match-wins semantics, so results are reproducible
// without any model or external service.
type ExtractService struct {
	logger *zap.Logger
}

func NewExtractService(logger *zap.Logger) *ExtractService {
	return &ExtractService{logger: logger}
}

// Date returns the first syntactically valid ISO date found by the first
// matching pattern family, or nil. An invalid calendar value (month 13,
// day 40) does not stop the scan; the next family gets its turn.
func (s *ExtractService) Date(text string) *string {
	for _, m := range dateMatchers {
		groups := m.re.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		y, mo, d := m.parts(groups)
		iso, ok := validDate(y, mo, d)
		if !ok {
			continue
		}
		return &iso
	}
	return nil
}

func validDate(y, mo, d string) (string, bool) {
	year, _ := strconv.Atoi(y)
	month, _ := strconv.Atoi(mo)
	day, _ := strconv.Atoi(d)

	if month < 1 || month > 12 || day < 1 {
		return "", false
	}
	// time.Date normalizes overflow (Feb 30 becomes Mar 2), so round-trip
	// the components to reject impossible days.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// TotalAndCurrency extracts the receipt total and, when a currency symbol
// prefixes it, the mapped ISO currency code. No match means both stay nil,
// never zero.
func (s *ExtractService) TotalAndCurrency(text string) (*float64, *string) {
	for _, re := range amountMatchers {
		groups := re.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		raw := strings.ReplaceAll(groups[1], " ", "")
		if raw == "" {
			continue
		}

		var currency *string
		first, size := firstRune(raw)
		if code, ok := currencyByRune[first]; ok {
			currency = &code
			raw = raw[size:]
		}

		raw = strings.ReplaceAll(raw, ",", ".")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		return &value, currency
	}
	return nil, nil
}

// Vendor picks the vendor line out of the receipt header: the first of the
// leading six non-blank lines that is not boilerplate and has a plausible
// length, falling back to the truncated first line.
func (s *ExtractService) Vendor(text string) *string {
	lines := nonBlankLines(text)
	if len(lines) == 0 {
		return nil
	}

	head := lines
	if len(head) > 6 {
		head = head[:6]
	}
	for _, ln := range head {
		if vendorSkipRe.MatchString(ln) {
			continue
		}
		if n := len([]rune(ln)); n >= 2 && n <= 48 {
			v := ln
			return &v
		}
	}

	fallback := truncateRunes(lines[0], 48)
	return &fallback
}

// Category infers a coarse category from vendor and text keywords. Rule
// order is the tie-break; no hit yields "other", never an empty string.
func (s *ExtractService) Category(vendor *string, text string) models.Category {
	v := ""
	if vendor != nil {
		v = *vendor
	}
	blob := strings.ToLower(v + " " + text)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(blob, kw) {
				return rule.category
			}
		}
	}
	return models.CategoryOther
}

// Items extracts purchased line items: each line ending in an amount whose
// name part is not a summary row (total, tax, ...). Order follows the text.
func (s *ExtractService) Items(text string) []models.LineItem {
	items := make([]models.LineItem, 0)
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if len([]rune(line)) < 3 {
			continue
		}
		groups := itemLineRe.FindStringSubmatch(line)
		if groups == nil {
			continue
		}

		name := strings.Trim(groups[1], " -:\t")
		priceRaw := strings.ReplaceAll(groups[2], " ", "")

		var currency *string
		first, size := firstRune(priceRaw)
		if code, ok := currencyByRune[first]; ok {
			currency = &code
			priceRaw = priceRaw[size:]
		}

		price, err := strconv.ParseFloat(strings.ReplaceAll(priceRaw, ",", "."), 64)
		if err != nil {
			continue
		}
		if name == "" || summaryNameRe.MatchString(name) {
			continue
		}

		items = append(items, models.LineItem{
			Name:     truncateRunes(name, 120),
			Price:    price,
			Currency: currency,
		})
	}
	return items
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		if ln := strings.TrimSpace(raw); ln != "" {
			lines = append(lines, ln)
		}
	}
	return lines
}

func firstRune(s string) (rune, int) {
	return utf8.DecodeRuneInString(s)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
