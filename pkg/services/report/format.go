package report

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var palette = []string{
	"#2c7be5", "#00d27a", "#f5803e", "#e63757", "#27bcfd",
	"#748194", "#6f42c1", "#d5b10f", "#1b9e77", "#a6761d",
}

// colorAt picks a stable color for the i-th slice of a share chart.
func colorAt(i int) string {
	return palette[i%len(palette)]
}

// fixed2 renders v with two decimals. Missing values render as "".
func fixed2(v *float64) string {
	if v == nil {
		return ""
	}
	return decimal.NewFromFloat(*v).StringFixed(2)
}

// rate renders a ratio as a percentage number without the sign; missing or zero is "0.00".
func rate(v *float64) string {
	if v == nil || *v == 0 {
		return "0.00"
	}
	return decimal.NewFromFloat(*v).Mul(decimal.NewFromInt(100)).StringFixed(2)
}

// incrementRate renders a ratio as "NN.NN%".
func incrementRate(v *float64) string {
	return rate(v) + "%"
}

// sum adds the present values; nil when none is present.
func sum(values ...*float64) *float64 {
	var present []decimal.Decimal
	for _, v := range values {
		if v != nil {
			present = append(present, decimal.NewFromFloat(*v))
		}
	}
	if len(present) == 0 {
		return nil
	}
	total := decimal.Sum(present[0], present[1:]...).InexactFloat64()
	return &total
}

// zeroSum is sum with 0 instead of nil.
func zeroSum(values ...*float64) *float64 {
	if total := sum(values...); total != nil {
		return total
	}
	zero := 0.0
	return &zero
}

func label(name, unit string) string {
	return fmt.Sprintf("%s (%s)", name, unit)
}

func seriesKey(prefix string, i int) string {
	return fmt.Sprintf("%s%d", prefix, i)
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func stringAt(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
