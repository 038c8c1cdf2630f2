package prompts

// Input is a superset of all fields any prompt might need.
// Missing fields render empty strings (templates use missingkey=zero).
type Input struct {
	// Trip facts
	Destination string
	StartDate   string
	EndDate     string
	TotalDays   int
	Travelers   int

	// Preferences
	Pace        string
	BudgetLevel string
	Interests   string
	Dietary     string
	Mobility    string
	Notes       string

	// Plan summary context
	TripTitle string
	Overview  string

	// Day generation
	DayNumber          int
	DayDate            string
	DayTitle           string
	PreviousDaySummary string
	NextDayTitle       string

	// Places catalog, rendered as JSON lines of {id, name, type, rating}
	PlacesCatalogJSON string
}
