package models

// StockWithWatchlistStatus is a search result annotated with whether the
// current user already tracks the symbol
type StockWithWatchlistStatus struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Exchange      string `json:"exchange"`
	Type          string `json:"type"`
	IsInWatchlist bool   `json:"isInWatchlist"`
}

// StockDetails holds a fully resolved view of one symbol: live quote,
// company identity, and pre-formatted display strings
type StockDetails struct {
	Symbol             string  `json:"symbol"`
	Company            string  `json:"company"`
	CurrentPrice       float64 `json:"currentPrice"`
	ChangePercent      float64 `json:"changePercent"`
	PriceFormatted     string  `json:"priceFormatted"`
	ChangeFormatted    string  `json:"changeFormatted"`
	PERatio            string  `json:"peRatio"`
	MarketCapFormatted string  `json:"marketCapFormatted"`
}
