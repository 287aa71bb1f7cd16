package domain

// NewsItem is one article in a search result. Links are kept as returned by
// the upstream search API; only articles hosted on the n.news.naver.com
// domain survive filtering, because only those support summary lookup.
type NewsItem struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originalLink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}

// NewsData is the payload of a successful news search.
type NewsData struct {
	Total   int        `json:"total"`
	Display int        `json:"display"`
	Items   []NewsItem `json:"items"`
}

// NewsResponse is the envelope returned by the news search endpoint.
type NewsResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    *NewsData `json:"data,omitempty"`
}

// NewsSummaryData is the payload of a successful article summary lookup.
type NewsSummaryData struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// NewsSummaryResponse is the envelope returned by the news summary endpoint.
type NewsSummaryResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    *NewsSummaryData `json:"data,omitempty"`
}
