package database

// Headline is a collected headline row.
type Headline struct {
	ID          int64
	Date        string
	URL         string
	Title       string
	Source      *string
	Published   *string
	CollectedAt *string
}

// DailySummary is a stored summary row. Payload holds the full JSON record;
// the remaining columns are copies used for listings and trends.
type DailySummary struct {
	Date        string
	Payload     string
	Items       int
	VaderMean   float64
	HeadWithNeg float64
	HeadWithUnc float64
	HeadWithPos float64
	GeneratedAt *string
}

// TrendPoint is one day of the historical trend view.
type TrendPoint struct {
	Date        string  `json:"date"`
	Items       int     `json:"n_items"`
	VaderMean   float64 `json:"vader_mean"`
	HeadWithNeg float64 `json:"head_w_neg"`
	HeadWithUnc float64 `json:"head_w_unc"`
	HeadWithPos float64 `json:"head_w_pos"`
}

// RunReport holds metadata about a pipeline run.
type RunReport struct {
	ID            int64
	Date          string
	GeneratedAt   *string
	HeadlineCount int
	DroppedCount  int
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalHeadlines    int
	DaysWithHeadlines int
	Summaries         int
	Runs              int
	FirstSummary      string
	LastSummary       string
}
