package comparison

import (
	"strconv"

	"github.com/EnmanuelReynoso23/el-pensum/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	textUnavailable = "No disponible"
	textAvailable   = "Disponible"
	unitYears       = " años"
	currencyMarker  = "$"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders f with thousands separators, e.g. 1500 -> "$1,500"
func FormatCurrency(f float64) string {
	return currencyMarker + printer.Sprint(number.Decimal(f, number.MaxFractionDigits(2)))
}

// Format renders v for display according to kind
func Format(kind Kind, v Value) string {
	if !v.Present {
		return textUnavailable
	}

	switch kind {
	case KindCost:
		if v.IsText {
			return textUnavailable
		}
		return FormatCurrency(v.Number)
	case KindDuration:
		return strconv.FormatFloat(v.Number, 'f', -1, 64) + unitYears
	case KindSyllabus:
		return textAvailable
	default:
		return v.String()
	}
}

// TotalCost is enrollment + admission + credit cost * total credits + card fee,
// with missing terms counted as zero
func TotalCost(o *model.Offering) float64 {
	if o == nil {
		return 0
	}

	num := func(key string) float64 {
		return Attribute(o, key).Number
	}

	return num("enrollment_cost") +
		num("admission_cost") +
		num("credit_cost")*num("total_credits") +
		num("card_cost")
}

// FormatTotalCost renders total as currency, or "No disponible" when it is zero
func FormatTotalCost(total float64) string {
	if total == 0 {
		return textUnavailable
	}
	return FormatCurrency(total)
}
