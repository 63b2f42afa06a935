// Package ledger turns raw expense input into normalised records and derives
// totals and per-member balances from them. Like the itinerary package it is
// pure: callers load, compute and persist.
package ledger

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/pkordes/trip-planner/internal/domain"
)

// ExpenseInput is an expense as entered by a user or read from an import
// file. Amount and Rate are raw text and may be incomplete or empty.
type ExpenseInput struct {
	Title         string
	Amount        string
	Currency      string
	Rate          string
	Category      string
	PaymentMethod string
	Payer         domain.Member
	Beneficiary   domain.Beneficiary
	Date          time.Time
	Location      string
	Notes         string
	ImageURL      string
}

// ErrOutOfRange reports an amount or rate the ledger cannot hold: more than
// MaxMagnitude in size, more than MaxScale digits of exponent either way, or
// a base amount that does not fit in an int64.
var ErrOutOfRange = errors.New("number out of range")

const (
	// MaxScale bounds the decimal exponent of a parsed number, so "1e9999"
	// and a thousand-digit fraction are both refused before any arithmetic.
	MaxScale = 18
)

var (
	zero = decimal.Zero
	one  = decimal.NewFromInt(1)
	half = decimal.New(5, -1)

	// MaxMagnitude is the largest absolute amount or rate accepted.
	MaxMagnitude = decimal.New(1, 15)

	minBase = decimal.NewFromInt(math.MinInt64)
	maxBase = decimal.NewFromInt(math.MaxInt64)

	numericPrefix = regexp.MustCompile(`^([+-]?)(\d+(?:\.\d+)?|\.\d+)([eE][+-]?\d+)?`)
)

// ParseNumber reads the leading number in text, ignoring anything after it,
// so "12.5 JPY" reads as 12.5. Text with no leading number, or a number out
// of range, yields fallback.
func ParseNumber(text string, fallback decimal.Decimal) decimal.Decimal {
	d, found, err := parseNumber(text)
	if !found || err != nil {
		return fallback
	}
	return d
}

// parseNumber reports whether text starts with a number and, if so, whether
// that number is within range. No arithmetic happens before the range check.
func parseNumber(text string) (decimal.Decimal, bool, error) {
	m := numericPrefix.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return zero, false, nil
	}
	sign, digits, exp := m[1], m[2], m[3]
	if strings.HasPrefix(digits, ".") {
		digits = "0" + digits
	}
	d, err := decimal.NewFromString(sign + digits + exp)
	if err != nil {
		// The exponent does not fit in an int32.
		return zero, true, ErrOutOfRange
	}
	if e := d.Exponent(); e > MaxScale || e < -MaxScale {
		return zero, true, ErrOutOfRange
	}
	if d.Abs().GreaterThan(MaxMagnitude) {
		return zero, true, ErrOutOfRange
	}
	return d, true, nil
}

// CheckInput reports ErrOutOfRange, naming the field, when the amount or rate
// of in is out of range or their product does not fit a base amount.
// Unparseable text is not an error; it takes the usual defaults.
func CheckInput(in ExpenseInput) error {
	amount, _, err := parseNumber(in.Amount)
	if err != nil {
		return fmt.Errorf("amount %q: %w", in.Amount, err)
	}
	rate, _, err := parseNumber(in.Rate)
	if err != nil {
		return fmt.Errorf("rate %q: %w", in.Rate, err)
	}
	if rate.IsZero() {
		rate = one
	}
	if _, ok := baseAmount(amount, rate); !ok {
		return fmt.Errorf("amount %q at rate %q: %w", in.Amount, in.Rate, ErrOutOfRange)
	}
	return nil
}

// BaseAmount returns round(amount × rate) with halves rounded up. Results
// beyond the int64 range saturate at its ends; CheckInput rejects such input
// before it reaches the ledger.
func BaseAmount(amount, rate decimal.Decimal) int64 {
	n, ok := baseAmount(amount, rate)
	if !ok {
		if amount.Sign()*rate.Sign() < 0 {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	return n
}

func baseAmount(amount, rate decimal.Decimal) (int64, bool) {
	r := amount.Mul(rate).Add(half).Floor()
	if r.LessThan(minBase) || r.GreaterThan(maxBase) {
		return 0, false
	}
	return r.IntPart(), true
}

// NewExpense builds a fresh record for tripID from in. Unparseable amounts
// count as 0 and unparseable or zero rates as 1.
func NewExpense(tripID uuid.UUID, in ExpenseInput) domain.Expense {
	e := apply(domain.Expense{}, in)
	e.ID = uuid.New()
	e.TripID = tripID
	return e
}

// UpdateExpense recomputes existing from in, keeping its identity. Applying
// the same input twice gives the same record.
func UpdateExpense(existing domain.Expense, in ExpenseInput) domain.Expense {
	return apply(existing, in)
}

func apply(e domain.Expense, in ExpenseInput) domain.Expense {
	amount := ParseNumber(in.Amount, zero)
	rate := ParseNumber(in.Rate, one)
	if rate.IsZero() {
		rate = one
	}

	e.Title = in.Title
	e.Amount = amount.InexactFloat64()
	e.Currency = NormalizeCurrency(in.Currency)
	e.Rate = rate.InexactFloat64()
	e.BaseAmount = BaseAmount(amount, rate)
	e.Category = in.Category
	e.PaymentMethod = in.PaymentMethod
	e.Payer = in.Payer
	e.Beneficiary = in.Beneficiary
	e.Date = in.Date
	e.Location = in.Location
	e.Notes = in.Notes
	e.ImageURL = in.ImageURL
	return e
}

// InputOf returns the input that reproduces e.
func InputOf(e domain.Expense) ExpenseInput {
	return ExpenseInput{
		Title:         e.Title,
		Amount:        decimal.NewFromFloat(e.Amount).String(),
		Currency:      e.Currency,
		Rate:          decimal.NewFromFloat(e.Rate).String(),
		Category:      e.Category,
		PaymentMethod: e.PaymentMethod,
		Payer:         e.Payer,
		Beneficiary:   e.Beneficiary,
		Date:          e.Date,
		Location:      e.Location,
		Notes:         e.Notes,
		ImageURL:      e.ImageURL,
	}
}

// NormalizeCurrency upper-cases a recognised ISO 4217 code. Anything else is
// kept as typed.
func NormalizeCurrency(code string) string {
	trimmed := strings.TrimSpace(code)
	unit, err := currency.ParseISO(strings.ToUpper(trimmed))
	if err != nil {
		return trimmed
	}
	return unit.String()
}

// RemoveExpense returns expenses without the record with the given id.
func RemoveExpense(expenses []domain.Expense, id uuid.UUID) []domain.Expense {
	return slices.DeleteFunc(slices.Clone(expenses), func(e domain.Expense) bool {
		return e.ID == id
	})
}

// TotalBaseAmount sums BaseAmount over expenses.
func TotalBaseAmount(expenses []domain.Expense) int64 {
	var total int64
	for _, e := range expenses {
		total += e.BaseAmount
	}
	return total
}

// BudgetProgress returns spending as a percentage of budget, capped at 100.
// It is 0 when there is no positive budget.
func BudgetProgress(total int64, budget *float64) float64 {
	if budget == nil || *budget <= 0 {
		return 0
	}
	return min(100, float64(total)/(*budget)*100)
}

// CategoryTotal is the base-currency spend of one category.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
}

// CategoryTotals groups spending by category, largest first.
func CategoryTotals(expenses []domain.Expense) []CategoryTotal {
	sums := make(map[string]int64)
	for _, e := range expenses {
		sums[e.Category] += e.BaseAmount
	}
	out := make([]CategoryTotal, 0, len(sums))
	for c, total := range sums {
		out = append(out, CategoryTotal{Category: c, Total: total})
	}
	slices.SortFunc(out, func(a, b CategoryTotal) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})
	return out
}
