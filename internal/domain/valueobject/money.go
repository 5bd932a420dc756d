package valueobject

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

const DefaultCurrency = "USD"

type BudgetType string

const (
	BudgetTypeFixed  BudgetType = "fixed"
	BudgetTypeHourly BudgetType = "hourly"
)

func NewBudgetType(value string) (BudgetType, error) {
	t := BudgetType(strings.ToLower(strings.TrimSpace(value)))
	switch t {
	case "":
		return BudgetTypeFixed, nil
	case BudgetTypeFixed, BudgetTypeHourly:
		return t, nil
	}
	return "", apperror.New(apperror.ErrCodeValidation, "некорректный тип бюджета")
}

type Money struct {
	Amount   float64
	Currency string
}

func NewMoney(amount float64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, apperror.New(apperror.ErrCodeValidation, "сумма не может быть отрицательной")
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Amount: amount, Currency: strings.ToUpper(currency)}, nil
}

type Budget struct {
	Type     BudgetType
	Min      float64
	Max      float64
	Currency string
}

func NewBudget(budgetType BudgetType, min, max float64, currency string) (Budget, error) {
	if min < 0 || max < 0 {
		return Budget{}, apperror.New(apperror.ErrCodeValidation, "бюджет не может быть отрицательным")
	}
	if min > max {
		return Budget{}, apperror.New(apperror.ErrCodeValidation, "минимальный бюджет не может превышать максимальный")
	}
	if budgetType == "" {
		budgetType = BudgetTypeFixed
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return Budget{Type: budgetType, Min: min, Max: max, Currency: strings.ToUpper(currency)}, nil
}

func (b Budget) IsInRange(amount float64) bool {
	return amount >= b.Min && amount <= b.Max
}

func (b Budget) String() string {
	return fmt.Sprintf("%s %.2f - %.2f", b.Currency, b.Min, b.Max)
}

// ParseAmount разбирает сумму из формы. Пустая строка означает 0.
func ParseAmount(field, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("%s должен быть числом", field))
	}
	if value < 0 {
		return 0, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("%s не может быть отрицательным", field))
	}
	return value, nil
}
