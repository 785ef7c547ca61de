package models

// RawNewsArticle represents a news record as returned by the market-data API
type RawNewsArticle struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Image    string `json:"image"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// Valid reports whether the article carries the fields required for display.
// Articles without an id, headline, or URL are dropped before use.
func (a RawNewsArticle) Valid() bool {
	return a.ID != 0 && a.Headline != "" && a.URL != ""
}

// NewsArticle is the uniform article shape returned to clients
type NewsArticle struct {
	ID            int64  `json:"id"`
	Headline      string `json:"headline"`
	Source        string `json:"source"`
	URL           string `json:"url"`
	Summary       string `json:"summary"`
	Image         string `json:"image,omitempty"`
	Datetime      int64  `json:"datetime"`
	Related       string `json:"related"`
	IsCompanyNews bool   `json:"isCompanyNews"`
	Rank          int    `json:"rank"`
}

// FormatArticle normalizes a raw article into the output shape. For company
// news the related field is forced to the requested symbol; general news keeps
// whatever the upstream reported.
func FormatArticle(a RawNewsArticle, isCompanyNews bool, symbol string, rank int) NewsArticle {
	related := a.Related
	if isCompanyNews {
		related = symbol
	}

	return NewsArticle{
		ID:            a.ID,
		Headline:      a.Headline,
		Source:        a.Source,
		URL:           a.URL,
		Summary:       a.Summary,
		Image:         a.Image,
		Datetime:      a.Datetime,
		Related:       related,
		IsCompanyNews: isCompanyNews,
		Rank:          rank,
	}
}
