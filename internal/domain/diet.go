package domain

// Meal is one meal of a daily diet with its macro summary.
type Meal struct {
	// Meal name, e.g. "Breakfast" or "Snack 1"
	Name string `json:"name" example:"Breakfast"`
	// Approximate calories
	Calories int `json:"calories" example:"520"`
	// Protein in grams
	ProteinG int `json:"protein_g" example:"35"`
	// Carbs in grams
	CarbsG int `json:"carbs_g" example:"55"`
	// Fats in grams
	FatsG int `json:"fats_g" example:"18"`
	// Brief ingredients or preparation instructions
	Ingredients string `json:"ingredients" example:"3 eggs, oats, banana"`
}

// DietDay is one day of the weekly meal plan.
type DietDay struct {
	// Day label, e.g. "Monday"
	Day   string `json:"day" example:"Monday"`
	Meals []Meal `json:"meals"`
	// Total daily calories
	TotalCalories int `json:"total_calories" example:"2400"`
	// Total daily protein in grams
	TotalProteinG int `json:"total_protein_g" example:"150"`
}

// WeeklyDiet is the structured meal plan returned by a provider.
type WeeklyDiet struct {
	Days []DietDay `json:"days"`
}

// GenerateDietRequest is the request body for the diet generation endpoint.
// @Description Meal plan generation request. Profile data is read from the stored profile.
type GenerateDietRequest struct {
	// AI provider: OpenAI or Anthropic
	Provider Provider `json:"provider" validate:"required,oneof=OpenAI Anthropic" example:"OpenAI"`
	// Optional caller-supplied API key; takes precedence over the server key
	APIKey string `json:"api_key,omitempty" validate:"omitempty,max=512"`
	// Force a fresh provider call, bypassing the cache
	Regenerate bool `json:"regenerate,omitempty"`
}

// GenerateDietResponse carries a generated meal plan.
type GenerateDietResponse struct {
	Diet   *WeeklyDiet   `json:"diet"`
	Source RoutineSource `json:"source" example:"ai"`
	// Trace ID for feedback linking (present when tracing is enabled)
	TraceID string `json:"trace_id,omitempty"`
}
