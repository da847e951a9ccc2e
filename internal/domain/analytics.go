package domain

// DailyCount is one point of a dashboard time series.
type DailyCount struct {
	Date    string `json:"date"`
	Created int    `json:"created"`
	Closed  int    `json:"closed"`
}

// AnalyticsSummary is the read-side fold of an issue set.
type AnalyticsSummary struct {
	Total                 int                   `json:"total"`
	ByStatus              map[IssueStatus]int   `json:"by_status"`
	ByPriority            map[IssuePriority]int `json:"by_priority"`
	ByType                map[string]int        `json:"by_type"`
	ResolutionRate        float64               `json:"resolution_rate"`
	AvgResolutionHours    float64               `json:"avg_resolution_hours"`
	AvgFirstResponseHours float64               `json:"avg_first_response_hours"`
	ResolutionBreaches    int                   `json:"resolution_breaches"`
	DataIntegrityIssues   int                   `json:"data_integrity_issues"`
	Series                []DailyCount          `json:"series"`
}

// EmptyAnalyticsSummary returns the zero-valued summary with initialized maps.
func EmptyAnalyticsSummary() *AnalyticsSummary {
	return &AnalyticsSummary{
		ByStatus:   map[IssueStatus]int{},
		ByPriority: map[IssuePriority]int{},
		ByType:     map[string]int{},
		Series:     []DailyCount{},
	}
}
