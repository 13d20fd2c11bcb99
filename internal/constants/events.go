package constants

// Event types published on the clan event stream
const (
	EventMilestone     = "MILESTONE"
	EventWeeklySummary = "WEEKLY_SUMMARY"
)
