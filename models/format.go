package models

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatPrice formats a price as US currency with two decimals and
// thousands grouping, e.g. 1234.5 -> "$1,234.50"
func FormatPrice(price float64) string {
	return usPrinter.Sprintf("$%.2f", price)
}

// FormatChangePercent formats a percentage change with an explicit sign and
// two decimals, e.g. 1.5 -> "+1.50%", -0.25 -> "-0.25%"
func FormatChangePercent(change float64) string {
	formatted := decimal.NewFromFloat(change).StringFixed(2) + "%"
	if change >= 0 {
		return "+" + formatted
	}
	return formatted
}

// FormatMarketCap formats a market capitalization with a magnitude suffix:
// trillions, billions, or millions with two decimals; smaller values are
// rendered as the raw number.
func FormatMarketCap(marketCap float64) string {
	switch {
	case marketCap >= 1e12:
		return decimal.NewFromFloat(marketCap / 1e12).StringFixed(2) + "T"
	case marketCap >= 1e9:
		return decimal.NewFromFloat(marketCap / 1e9).StringFixed(2) + "B"
	case marketCap >= 1e6:
		return decimal.NewFromFloat(marketCap / 1e6).StringFixed(2) + "M"
	default:
		return decimal.NewFromFloat(marketCap).String()
	}
}
