package domain

// Recipe is a named, ordered sequence of steps. Immutable once loaded.
type Recipe struct {
	ID          string
	Name        string
	Description string
	Steps       []RecipeStep
}

// RecipeStep is a single instruction with an expected duration.
type RecipeStep struct {
	Description     string
	DurationSeconds int // > 0
}

// Snapshot is an immutable copy of the recipe timer state at a point
// in time. It is the only representation of recipe state that ever
// reaches subscribers.
type Snapshot struct {
	RecipeID         string
	StepIndex        int
	StepCount        int
	Step             RecipeStep
	RemainingSeconds int
	Running          bool
}

// LastStep reports whether the snapshot is positioned on the final step.
func (s Snapshot) LastStep() bool {
	return s.StepIndex >= s.StepCount-1
}
