package dto

// DashboardStats is the scope-filtered aggregator output.
type DashboardStats struct {
	Books            int64            `json:"books"`
	Users            int64            `json:"users"`
	Libraries        int64            `json:"libraries"`
	Categories       int64            `json:"categories"`
	LoansActive      int64            `json:"loans_active"`
	LoansTotal       int64            `json:"loans_total"`
	RequestsByStatus map[string]int64 `json:"requests_by_status"`

	BooksPerCategory []CategoryCount `json:"books_per_category"`
	TopBooks         []TopBook       `json:"top_books"`
	RecentRequests   []FeedItem      `json:"recent_requests"`
}

type CategoryCount struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Count      int64  `json:"count"`
}

type TopBook struct {
	BookID string `json:"book_id"`
	Title  string `json:"title"`
	Count  int64  `json:"count"`
}
