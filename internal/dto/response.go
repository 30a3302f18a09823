package dto

// ── query parameters ──

// DateRangeQuery inclusive date range; both ends optional
type DateRangeQuery struct {
	From string `form:"from" binding:"omitempty,date_ymd"`
	To   string `form:"to"   binding:"omitempty,date_ymd"`
}
