package domain

// HistoricalContext summarizes adherence to the user's most recent routine.
// It is derived per request and never stored.
type HistoricalContext struct {
	WeekNumber           int      `json:"week_number"`
	TotalExercises       int      `json:"total_exercises"`
	CompletedExercises   int      `json:"completed_exercises"`
	CompletionPercentage int      `json:"completion_percentage"`
	// First 5 not-completed exercises in plan order
	Struggling []string `json:"struggling"`
	// First 5 completed exercises in plan order
	Excelling []string `json:"excelling"`
}
