package models

import "strings"

// NormalizeSymbol trims whitespace and uppercases a ticker symbol
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// NormalizeSymbols normalizes a list of symbols, dropping entries that are
// empty after trimming
func NormalizeSymbols(symbols []string) []string {
	cleaned := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if normalized := NormalizeSymbol(s); normalized != "" {
			cleaned = append(cleaned, normalized)
		}
	}
	return cleaned
}
